package blob

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// driverBoundary names an infra tree and the only package tree allowed to
// import it.
type driverBoundary struct {
	infra   string
	facade  string
	purpose string
}

var driverBoundaries = []driverBoundary{
	{infra: "expdb/internal/infra/blob", facade: "expdb/internal/blob", purpose: "dataset storage"},
	{infra: "expdb/internal/infra/persistence", facade: "expdb/internal/audit", purpose: "audit persistence"},
}

// TestInfraReachedOnlyThroughFacades loads every package (tests included) and
// fails when an infra driver is imported from outside its facade.
func TestInfraReachedOnlyThroughFacades(t *testing.T) {
	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "expdb/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	seen := make(map[string]bool)
	for _, pkg := range pkgs {
		for importPath := range pkg.Imports {
			for _, b := range driverBoundaries {
				if !under(importPath, b.infra) || under(pkg.PkgPath, b.facade) || under(pkg.PkgPath, b.infra) {
					continue
				}
				v := pkg.PkgPath + " -> " + importPath + " (" + b.purpose + ")"
				if !seen[v] {
					seen[v] = true
					violations = append(violations, v)
				}
			}
		}
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("infra driver imported outside its facade: %s", v)
	}
}

func under(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

func TestUnder(t *testing.T) {
	cases := map[string]bool{
		"expdb/internal/infra/blob":       true,
		"expdb/internal/infra/blob/s3":    true,
		"expdb/internal/infra/blobby":     false,
		"expdb/internal/infra/persistenc": false,
	}
	for path, want := range cases {
		if got := under(path, "expdb/internal/infra/blob"); got != want {
			t.Errorf("under(%q) = %v, want %v", path, got, want)
		}
	}
}
