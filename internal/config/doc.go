// Package config provides configuration parsing for use projects.
//
// The configuration is stored in use.json at the project root.
// This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "name": "use",
//	  "version": "0.3.0",
//	  "registry": {
//	    "bucket": "my-module-registry",
//	    "region": "us-east-1",
//	    "prefix": "modules"
//	  },
//	  "lint": {
//	    "types": ["feat", "fix", "docs", "chore"],
//	    "maxHeaderLength": 72,
//	    "requireScope": true,
//	    "scopes": ["debounce", "toggle", "storage", "geo"]
//	  }
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Bucket:", cfg.Registry.Bucket)
package config
