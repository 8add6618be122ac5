// Package infra contains technical adapters such as file readers
// and log writers. These packages build on the types and
// interfaces defined in the core packages.
package infra
