package publish

import (
	"context"
	"os"

	uerrors "github.com/bymeisam/use/internal/errors"
)

// Pinger is implemented by registries that can verify connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Diagnose runs ordered health checks against the registry and returns the
// first failure as a coded error with a suggestion attached. It never
// writes to the registry.
func Diagnose(ctx context.Context, reg Registry) error {
	// S3 clients read credentials from the environment. Catch the empty
	// environment here, before the first signed request fails with a
	// cryptic 403.
	if _, ok := reg.(*S3Registry); ok {
		if os.Getenv("AWS_ACCESS_KEY_ID") == "" || os.Getenv("AWS_SECRET_ACCESS_KEY") == "" {
			return uerrors.New("P008").
				WithSuggestion("Export AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY (and AWS_SESSION_TOKEN for temporary credentials).")
		}
	}

	if p, ok := reg.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return uerrors.New("P005").
				WithDetail("the registry bucket did not answer a head request").
				WithSuggestion("Check that the bucket exists, the region matches, and the credentials may access it.").
				Wrap(err)
		}
	}

	// A read probe catches policies that allow bucket metadata but reject
	// object access.
	if _, err := reg.Exists(ctx, ".use/registry-check"); err != nil {
		return uerrors.New("P005").
			WithDetail("object reads against the registry are rejected").
			WithSuggestion("Grant s3:GetObject and s3:ListBucket on the registry bucket.").
			Wrap(err)
	}

	return nil
}
