package integrations_test

import (
	"fmt"

	"github.com/matzehuels/pypilink/pkg/integrations"
)

func ExampleNormalizePkgName() {
	// Package names are normalized to lowercase with hyphens
	fmt.Println(integrations.NormalizePkgName("FastAPI"))
	fmt.Println(integrations.NormalizePkgName("my_package"))
	fmt.Println(integrations.NormalizePkgName("zope.interface"))
	fmt.Println(integrations.NormalizePkgName("  Spaces  "))
	// Output:
	// fastapi
	// my-package
	// zope-interface
	// spaces
}
