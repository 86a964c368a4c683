// Package internal holds helpers shared by the bytepusher packages.
package internal

import (
	"iter"
	"maps"
)

// Chain yields each sequence in turn.
func Chain[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}

// Defines yields the entries of each define table in turn.
func Defines(tables ...map[string]string) iter.Seq2[string, string] {
	seqs := make([]iter.Seq2[string, string], len(tables))
	for n, table := range tables {
		seqs[n] = maps.All(table)
	}
	return Chain(seqs...)
}
