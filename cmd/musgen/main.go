package main

import (
	"os"
	"reflect"
	"strings"

	musgen "github.com/mus-format/musgen-go/mus"
	genops "github.com/mus-format/musgen-go/options/generate"
	structops "github.com/mus-format/musgen-go/options/struct"
	typeops "github.com/mus-format/musgen-go/options/type"
	"github.com/poiesic/reposcout/core"
)

func main() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	// go generate runs from core; write relative to the module root
	if strings.HasSuffix(cwd, "core") {
		if err := os.Chdir(".."); err != nil {
			panic(err)
		}
	}
	g, err := musgen.NewCodeGenerator(
		genops.WithPkgPath("github.com/poiesic/reposcout/core"),
	)
	if err != nil {
		panic(err)
	}

	g.AddDefinedType(reflect.TypeFor[core.Platform]())

	// Unix micro timestamps
	opts := typeops.WithTimeUnit(typeops.Micro)
	err = g.AddStruct(reflect.TypeFor[core.Record](),
		structops.WithField(), // Platform
		structops.WithField(), // FullName
		structops.WithField(), // Description
		structops.WithField(), // URL
		structops.WithField(), // Homepage
		structops.WithField(), // Language
		structops.WithField(), // Topics
		structops.WithField(), // Stars
		structops.WithField(), // Forks
		structops.WithField(), // OpenIssues
		structops.WithField(), // License
		structops.WithField(opts),
		structops.WithField(opts),
		structops.WithField(opts),
		structops.WithField()) // Archived
	if err != nil {
		panic(err)
	}

	err = g.AddStruct(reflect.TypeFor[core.RecordDoc](),
		structops.WithField(),
		structops.WithField())
	if err != nil {
		panic(err)
	}

	// Vectors live in the graph file; only the metadata goes through mus.
	err = g.AddStruct(reflect.TypeFor[core.PersistedEntry](),
		structops.WithField(),
		structops.WithField(opts),
		structops.WithField(),
		structops.WithField())
	if err != nil {
		panic(err)
	}

	bs, err := g.Generate()
	if err != nil {
		panic(err)
	}

	err = os.WriteFile("./core/records_mus.gen.go", bs, 0644)
	if err != nil {
		panic(err)
	}
}
