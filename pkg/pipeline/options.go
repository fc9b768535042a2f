package pipeline

import "github.com/askiada/cicd-assembler/pkg/pipeline/model"

type Option func(c *Compiler)

// WithCompileOptions attaches options whose hooks run on every compilation.
func WithCompileOptions(opts ...model.CompileOption) Option {
	return func(c *Compiler) {
		c.opts = append(c.opts, opts...)
	}
}

// WithConcurrency bounds the number of descriptors CompileAll compiles at once.
func WithConcurrency(concurrent int) Option {
	return func(c *Compiler) {
		if concurrent < 1 {
			concurrent = 1
		}
		c.concurrent = concurrent
	}
}
