package storage

import (
	"fmt"
	"path"
	"slices"
)

// DefaultObjectName is the object served at an environment's root.
const DefaultObjectName = "index.html"

// Envs lists the deployment environments, production first.
var Envs = []string{"prod", "beta", "dev"}

// ValidEnv reports whether env is a known deployment environment.
func ValidEnv(env string) bool {
	return slices.Contains(Envs, env)
}

// ObjectKey maps a document name to its key for env. Production objects live
// at the bucket root; every other environment gets its own prefix.
func ObjectKey(env, name string) (string, error) {
	if !ValidEnv(env) {
		return "", fmt.Errorf("unknown environment %q (want one of %v)", env, Envs)
	}
	if name == "" {
		name = DefaultObjectName
	}
	if env == "prod" {
		return name, nil
	}
	return path.Join(env, name), nil
}
