package id

import (
	gonanoid "github.com/matoous/go-nanoid/v2"
)

type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) generate(prefix string) string {
	id, err := gonanoid.New(21)
	if err != nil {
		return prefix + "_fallback"
	}
	return prefix + "_" + id
}

func (g *Generator) GenerateDatasetRowID() string {
	return g.generate("ds")
}

func (g *Generator) GeneratePromptVersionID() string {
	return g.generate("pv")
}

func (g *Generator) GenerateEvaluationRunID() string {
	return g.generate("ev")
}
