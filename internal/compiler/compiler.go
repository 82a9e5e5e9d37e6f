// Package compiler turns an ABC parse tree into a playable music.Piece.
package compiler

import (
	"errors"

	"github.com/cbegin/abckaraoke/internal/abc"
	"github.com/cbegin/abckaraoke/internal/music"
)

// Compile builds a Piece from a tree produced by abc.Parse.
func Compile(tree *abc.Node) (*music.Piece, error) {
	if tree == nil || tree.Kind != abc.KindABC {
		return nil, errors.New("compile: expected an abc root node")
	}
	header, err := ResolveHeader(collectHeader(tree.Child(abc.KindHeader)))
	if err != nil {
		return nil, err
	}
	if _, err := resolveKey(header.Key); err != nil {
		return nil, err
	}
	voices := make(map[string]music.Music)
	for _, v := range groupByVoice(tree.Child(abc.KindBody)) {
		m, err := assembleVoice(v, header)
		if err != nil {
			return nil, err
		}
		voices[v.name] = m
	}
	return music.NewPiece(header, voices), nil
}

// CompileString parses and compiles ABC source text.
func CompileString(src string) (*music.Piece, error) {
	tree, err := abc.Parse(src)
	if err != nil {
		return nil, err
	}
	return Compile(tree)
}
