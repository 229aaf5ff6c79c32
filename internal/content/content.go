/*
Package content
File: content.go
Description:
    Loads the static game data (characters and boosts) from YAML and
    validates it. Invalid content is an error the caller must treat as fatal:
    the game cannot run with broken definitions.

    The default content set is embedded in the binary; a directory with the
    same two files can replace it.
*/

package content

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/salvarecuero/tap-cat/internal/game"
)

const (
	// CharactersFile holds the `characters:` list.
	CharactersFile = "characters.yaml"
	// BoostsFile holds the `boosts:` list.
	BoostsFile = "boosts.yaml"
)

//go:embed data/*.yaml
var embedded embed.FS

// Numeric fields whose zero value is legal. Only the key proves they were
// written, so they are checked on the YAML tree rather than the decoded value.
var (
	characterNumbers = [][]string{{"anim", "tapScale"}, {"anim", "tapWiggleDeg"}}
	boostNumbers     = [][]string{{"price"}}
)

type charactersDoc struct {
	Characters []game.Character `yaml:"characters"`
}

type boostsDoc struct {
	Boosts []game.Boost `yaml:"boosts"`
}

// Default returns the embedded content set.
func Default() (*game.Catalog, error) {
	return Load("", "")
}

// Load reads content from dir, or the embedded set when dir is empty.
// defaultID names the fallback character; empty picks the built-in default.
func Load(dir, defaultID string) (*game.Catalog, error) {
	if dir == "" {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return nil, fmt.Errorf("embedded content: %w", err)
		}
		return LoadFS(sub, defaultID)
	}
	return LoadFS(os.DirFS(dir), defaultID)
}

// LoadFS reads and validates both content files from fsys.
func LoadFS(fsys fs.FS, defaultID string) (*game.Catalog, error) {
	// 1. Decode both files strictly: unknown keys are typos, not extensions.
	var chars charactersDoc
	charsData, err := decodeFile(fsys, CharactersFile, &chars)
	if err != nil {
		return nil, err
	}
	var boosts boostsDoc
	boostsData, err := decodeFile(fsys, BoostsFile, &boosts)
	if err != nil {
		return nil, err
	}

	// 2. Validate presence, shapes, ids and variant fields.
	if err := errors.Join(
		game.ValidateCharacters(chars.Characters),
		requireKeys(charsData, "characters", "character", characterNumbers),
		game.ValidateBoosts(boosts.Boosts),
		requireKeys(boostsData, "boosts", "boost", boostNumbers),
	); err != nil {
		return nil, fmt.Errorf("invalid content: %w", err)
	}

	// 3. The configured default must exist.
	catalog := game.NewCatalog(chars.Characters, boosts.Boosts, defaultID)
	if _, ok := catalog.Character(catalog.DefaultID); !ok {
		return nil, fmt.Errorf("invalid content: default character %q is not defined", catalog.DefaultID)
	}
	return catalog, nil
}

func decodeFile(fsys fs.FS, name string, out any) ([]byte, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	return data, nil
}

// requireKeys reports every entry of the top-level list that lacks one of
// the given key paths.
func requireKeys(data []byte, list, kind string, paths [][]string) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil || len(root.Content) == 0 {
		return nil
	}
	items := lookup(root.Content[0], list)
	if items == nil || items.Kind != yaml.SequenceNode {
		return nil
	}

	var errs []error
	for i, item := range items.Content {
		id := fmt.Sprintf("#%d", i)
		if n := lookup(item, "id"); n != nil && n.Value != "" {
			id = n.Value
		}
		for _, path := range paths {
			if v := lookup(item, path...); v == nil || v.Tag == "!!null" {
				errs = append(errs, &game.ContentError{Kind: kind, ID: id, Field: strings.Join(path, "."), Reason: "is required"})
			}
		}
	}
	return errors.Join(errs...)
}

// lookup follows keys through nested mappings, resolving aliases and merge
// keys. It returns nil when any key is absent.
func lookup(n *yaml.Node, keys ...string) *yaml.Node {
	for _, key := range keys {
		n = mappingValue(n, key)
		if n == nil {
			return nil
		}
	}
	return n
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n != nil && n.Kind == yaml.AliasNode {
		n = n.Alias
	}
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Tag != "!!merge" {
			continue
		}
		merged := n.Content[i+1]
		sources := []*yaml.Node{merged}
		if merged.Kind == yaml.SequenceNode {
			sources = merged.Content
		}
		for _, src := range sources {
			if v := mappingValue(src, key); v != nil {
				return v
			}
		}
	}
	return nil
}
