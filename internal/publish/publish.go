// Package publish packages a Go module and uploads it to an S3-backed
// module registry.
//
// The registry follows the GOPROXY protocol layout, so a published bucket
// can be served directly as a module proxy:
//
//	<prefix>/<escaped module path>/@v/list
//	<prefix>/<escaped module path>/@v/<version>.info
//	<prefix>/<escaped module path>/@v/<version>.mod
//	<prefix>/<escaped module path>/@v/<version>.zip
//
// Validation failures surface as coded errors (P001..P008) carrying
// suggestions for the command line to render.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	gopath "path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/mod/modfile"
	"golang.org/x/mod/module"
	"golang.org/x/mod/semver"
	modzip "golang.org/x/mod/zip"

	uerrors "github.com/bymeisam/use/internal/errors"
)

// Release describes a successfully published module version.
type Release struct {
	Path    string    `json:"path"`
	Version string    `json:"version"`
	Time    time.Time `json:"time"`
	Size    int64     `json:"size"`
}

// versionInfo is the GOPROXY .info document. Field names are part of the
// protocol.
type versionInfo struct {
	Version string
	Time    time.Time
}

// Publisher validates, archives and uploads module versions.
type Publisher struct {
	registry Registry
	prefix   string
	logger   *slog.Logger
}

// New creates a publisher that writes under prefix in the given registry.
// A nil logger falls back to slog.Default().
func New(registry Registry, prefix string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{registry: registry, prefix: prefix, logger: logger}
}

// Check validates the module at dir against version without touching the
// registry. It returns the module path declared in go.mod.
func (p *Publisher) Check(dir, version string) (string, error) {
	modPath, _, err := p.validate(dir, version)
	return modPath, err
}

// Publish archives the module at dir and uploads version to the registry.
func (p *Publisher) Publish(ctx context.Context, dir, version string) (*Release, error) {
	modPath, gomod, err := p.validate(dir, version)
	if err != nil {
		return nil, err
	}

	escPath, err := module.EscapePath(modPath)
	if err != nil {
		return nil, uerrors.New("P002").WithDetail(err.Error()).Wrap(err)
	}
	escVersion, err := module.EscapeVersion(version)
	if err != nil {
		return nil, uerrors.New("P003").WithDetail(err.Error()).Wrap(err)
	}

	infoKey := p.key(escPath, escVersion+".info")
	exists, err := p.registry.Exists(ctx, infoKey)
	if err != nil {
		return nil, uerrors.New("P005").Wrap(err)
	}
	if exists {
		return nil, uerrors.New("P004").
			WithDetail(fmt.Sprintf("%s@%s is already in the registry", modPath, version)).
			WithSuggestion("Published versions are immutable. Bump the version and publish again.")
	}

	var archive bytes.Buffer
	mv := module.Version{Path: modPath, Version: version}
	if err := modzip.CreateFromDir(&archive, mv, dir); err != nil {
		return nil, uerrors.New("P006").WithDetail(err.Error()).Wrap(err)
	}

	now := time.Now().UTC()
	info, err := json.Marshal(versionInfo{Version: version, Time: now})
	if err != nil {
		return nil, uerrors.New("P006").Wrap(err)
	}

	size := int64(archive.Len())
	uploads := []struct {
		key         string
		body        io.Reader
		contentType string
	}{
		{infoKey, bytes.NewReader(info), "application/json"},
		{p.key(escPath, escVersion+".mod"), bytes.NewReader(gomod), "text/plain; charset=utf-8"},
		{p.key(escPath, escVersion+".zip"), &archive, "application/zip"},
	}
	for _, u := range uploads {
		p.logger.Debug("uploading registry object", "key", u.key)
		if err := p.registry.Put(ctx, u.key, u.body, u.contentType); err != nil {
			return nil, uerrors.New("P005").WithDetail(fmt.Sprintf("upload of %s failed", u.key)).Wrap(err)
		}
	}

	if err := p.appendToList(ctx, escPath, version); err != nil {
		return nil, err
	}

	p.logger.Info("published module", "module", modPath, "version", version, "size", size)
	return &Release{Path: modPath, Version: version, Time: now, Size: size}, nil
}

// Versions lists the published versions of a module, oldest first.
func (p *Publisher) Versions(ctx context.Context, modPath string) ([]string, error) {
	escPath, err := module.EscapePath(modPath)
	if err != nil {
		return nil, uerrors.New("P002").WithDetail(err.Error()).Wrap(err)
	}
	versions, err := p.readList(ctx, escPath)
	if err != nil {
		return nil, err
	}
	semver.Sort(versions)
	return versions, nil
}

// ModulePath reads the module path declared by the go.mod in dir.
func ModulePath(dir string) (string, error) {
	modPath, _, err := readModule(dir)
	return modPath, err
}

// readModule loads and checks dir's go.mod, returning the declared module
// path and the raw file contents.
func readModule(dir string) (string, []byte, error) {
	gomodFile := filepath.Join(dir, "go.mod")
	gomod, err := os.ReadFile(gomodFile)
	if err != nil {
		return "", nil, uerrors.New("P001").
			WithDetail(fmt.Sprintf("no go.mod in %s", dir)).
			Wrap(err)
	}

	parsed, err := modfile.Parse(gomodFile, gomod, nil)
	if err != nil {
		return "", nil, uerrors.New("P002").WithDetail(err.Error()).Wrap(err)
	}
	if parsed.Module == nil || parsed.Module.Mod.Path == "" {
		return "", nil, uerrors.New("P002").WithDetail("go.mod has no module directive")
	}
	modPath := parsed.Module.Mod.Path
	if err := module.CheckPath(modPath); err != nil {
		return "", nil, uerrors.New("P002").WithDetail(err.Error()).Wrap(err)
	}

	return modPath, gomod, nil
}

// validate runs the offline checks shared by Check and Publish. It returns
// the declared module path and the raw go.mod contents.
func (p *Publisher) validate(dir, version string) (string, []byte, error) {
	modPath, gomod, err := readModule(dir)
	if err != nil {
		return "", nil, err
	}

	if !semver.IsValid(version) || semver.Canonical(version) != version {
		return "", nil, uerrors.New("P003").
			WithDetail(fmt.Sprintf("%q is not a canonical semantic version", version))
	}

	// Path and version are individually valid here, so a failure is the
	// major version suffix disagreeing with the version.
	if err := module.Check(modPath, version); err != nil {
		return "", nil, uerrors.New("P007").WithDetail(err.Error()).Wrap(err)
	}

	return modPath, gomod, nil
}

// appendToList merges version into the module's @v/list document.
func (p *Publisher) appendToList(ctx context.Context, escPath, version string) error {
	versions, err := p.readList(ctx, escPath)
	if err != nil {
		return err
	}
	for _, v := range versions {
		if v == version {
			return nil
		}
	}
	versions = append(versions, version)
	semver.Sort(versions)

	body := strings.Join(versions, "\n") + "\n"
	key := p.key(escPath, "list")
	if err := p.registry.Put(ctx, key, strings.NewReader(body), "text/plain; charset=utf-8"); err != nil {
		return uerrors.New("P005").WithDetail(fmt.Sprintf("upload of %s failed", key)).Wrap(err)
	}
	return nil
}

func (p *Publisher) readList(ctx context.Context, escPath string) ([]string, error) {
	rc, err := p.registry.Get(ctx, p.key(escPath, "list"))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, uerrors.New("P005").Wrap(err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, uerrors.New("P005").Wrap(err)
	}

	var versions []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			versions = append(versions, line)
		}
	}
	return versions, nil
}

func (p *Publisher) key(escPath string, name string) string {
	return gopath.Join(p.prefix, escPath, "@v", name)
}
