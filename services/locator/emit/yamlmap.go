// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package emit

import (
	"bytes"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/beacon/services/locator"
)

// YAMLMapFileName is the path of the YAML locator map artifact.
const YAMLMapFileName = "locators.yaml"

// YAMLEmitter renders the locator table as a single YAML map.
//
// The document is built as an explicit yaml.Node tree so key order and
// field omission mirror the JSON map exactly. Struct-tag encoding would
// reorder nothing but also gives no control over which empties vanish.
type YAMLEmitter struct{}

// Name returns the format name.
func (e *YAMLEmitter) Name() string {
	return string(FormatYAML)
}

// Emit renders the table into locators.yaml.
func (e *YAMLEmitter) Emit(table *locator.Table, opts Options) ([]Artifact, error) {
	root := mappingNode()
	appendScalarPair(root, "schema_version", SchemaVersion)
	appendScalarPair(root, "generator_version", generatorVersion(opts))

	files := sequenceNode()
	for _, f := range table.Files {
		if len(f.Records) == 0 {
			continue
		}
		fileNode := mappingNode()
		appendScalarPair(fileNode, "file", f.FilePath)

		records := sequenceNode()
		for _, r := range f.Records {
			records.Content = append(records.Content, recordNode(r))
		}
		appendPair(fileNode, "locators", records)
		files.Content = append(files.Content, fileNode)
	}
	appendPair(root, "files", files)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("encoding locator map: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding locator map: %w", err)
	}
	return []Artifact{{Path: YAMLMapFileName, Content: buf.Bytes()}}, nil
}

// recordNode builds the mapping for one locator record, mirroring the
// JSON field order and omitting the same zero values.
func recordNode(r *locator.LocatorRecord) *yaml.Node {
	n := mappingNode()
	appendScalarPair(n, "key", r.Key)
	appendScalarPair(n, "selector", r.Selector)
	appendScalarPair(n, "type", r.Type.String())
	appendScalarPair(n, "element", r.Element)
	appendScalarPair(n, "raw_value", r.RawValue)
	appendScalarPair(n, "robustness", r.Robustness.String())
	appendScalarPair(n, "relevance", r.Relevance.String())
	if r.IsDynamic {
		appendPair(n, "is_dynamic", boolNode(true))
	}
	if r.IsConditional {
		appendPair(n, "is_conditional", boolNode(true))
	}
	if len(r.Directives) > 0 {
		directives := sequenceNode()
		for _, d := range r.Directives {
			directives.Content = append(directives.Content, stringNode(d))
		}
		appendPair(n, "directives", directives)
	}
	if r.Warning != "" {
		appendScalarPair(n, "warning", r.Warning)
	}
	appendPair(n, "line", intNode(r.Line))
	return n
}

func mappingNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

func sequenceNode() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
}

func stringNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

func boolNode(value bool) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(value)}
}

func intNode(value int) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.Itoa(value)}
}

func appendPair(m *yaml.Node, key string, value *yaml.Node) {
	m.Content = append(m.Content, stringNode(key), value)
}

func appendScalarPair(m *yaml.Node, key, value string) {
	appendPair(m, key, stringNode(value))
}
