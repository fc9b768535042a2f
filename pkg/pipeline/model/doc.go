// Package model provides the data structures shared by the pipeline compiler and its options.
// It defines the repository descriptor the compiler consumes, the policy snapshot it reads,
// the stage specifications and pipeline graph it produces, and the hooks an option can attach
// to a compilation.
package model
