// Package config provides configuration parsing for Orbit projects.
//
// The configuration is stored in orbit.json (or orbit.yaml) at the project
// root. This package handles loading, saving, and validating configuration.
//
// # Configuration File Structure
//
//	{
//	  "prefix": "o-",
//	  "compute": {
//	    "engine": "expr",
//	    "allow": ["count * 2"]
//	  },
//	  "log": {
//	    "level": "info",
//	    "format": "text"
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "orbit"
//	  },
//	  "serve": {
//	    "host": "localhost",
//	    "port": 4000,
//	    "page": "index.html"
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
//	fmt.Println("Address:", cfg.Address())
package config
