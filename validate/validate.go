// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

// Package validate checks a fabric-cicd parameter.yml file against the
// artifacts that actually exist in the workspace folder. It reports
// file_path and item_name entries that point nowhere, and artifacts the
// parameter file does not cover.
package validate

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// ParameterFileName is the fixed name fabric-cicd expects inside the
// workspace folder.
const ParameterFileName = "parameter.yml"

// Options configure one validation run.
type Options struct {
	// WorkspacePath is the folder holding the workspace contents and the
	// parameter.yml file.
	WorkspacePath string
	// ArtifactTypes restricts the analysis to these item types
	// (Notebook, Report, SemanticModel, ...). Entries with an item_type
	// outside this set are ignored.
	ArtifactTypes []string
	// ExcludedPaths are workspace-relative folders skipped during the
	// project walk.
	ExcludedPaths []string
	// Fs defaults to the OS filesystem; tests use an in-memory one.
	Fs afero.Fs
}

// stringOrList accepts a yaml scalar or sequence of scalars, the two
// shapes file_path and item_name come in.
type stringOrList []string

func (s *stringOrList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		*s = []string{single}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*s = list
		return nil
	}
	return errors.Newf("unexpected yaml node kind %d for a string or string list", value.Kind)
}

// parameterEntry is one replacement rule of either flavor. ItemType is
// a pointer so an absent key can be told apart from an explicit empty
// value: only an absent item_type means "applies to every type".
type parameterEntry struct {
	ItemType *string      `yaml:"item_type"`
	ItemName stringOrList `yaml:"item_name"`
	FilePath stringOrList `yaml:"file_path"`
}

// parameterFile is the subset of parameter.yml this tool cares about.
type parameterFile struct {
	FindReplace     []parameterEntry `yaml:"find_replace"`
	KeyValueReplace []parameterEntry `yaml:"key_value_replace"`
}

// Run loads the parameter file, scans the workspace and produces the
// three-way comparison report.
func Run(opts Options) (*Report, error) {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	if len(opts.ArtifactTypes) == 0 {
		return nil, errors.New("at least one artifact type is required")
	}

	log.Info().
		Str("path", filepath.Join(opts.WorkspacePath, ParameterFileName)).
		Strs("types", opts.ArtifactTypes).
		Msg("starting parameter file validation")
	if len(opts.ExcludedPaths) > 0 {
		log.Info().Strs("excluded", opts.ExcludedPaths).Msg("paths excluded from the analysis")
	}

	params, err := loadParameterFile(opts.Fs, opts.WorkspacePath)
	if err != nil {
		return nil, err
	}

	desired := map[string]struct{}{}
	for _, t := range opts.ArtifactTypes {
		desired[t] = struct{}{}
	}

	// entries scoped to an item_type outside the desired set are not
	// part of the analysis
	entries := []parameterEntry{}
	for _, entry := range append(append([]parameterEntry{}, params.FindReplace...), params.KeyValueReplace...) {
		if entry.ItemType == nil {
			entries = append(entries, entry)
			continue
		}
		if _, ok := desired[*entry.ItemType]; ok {
			entries = append(entries, entry)
		}
	}

	pathPattern, err := artifactPathPattern(opts.ArtifactTypes)
	if err != nil {
		return nil, err
	}

	yamlFilePaths := map[string]struct{}{}
	yamlItemNames := map[string]struct{}{}
	for _, entry := range entries {
		for _, fp := range entry.FilePath {
			if name, ok := artifactNameFromPath(fp, pathPattern); ok {
				yamlFilePaths[name] = struct{}{}
			}
		}
		for _, name := range entry.ItemName {
			yamlItemNames[name] = struct{}{}
		}
	}

	projectArtifacts, err := findProjectArtifacts(opts.Fs, opts.WorkspacePath, opts.ArtifactTypes, opts.ExcludedPaths)
	if err != nil {
		return nil, err
	}

	// every artifact the yaml knows about, under either attribute
	yamlArtifacts := map[string]struct{}{}
	for name := range yamlFilePaths {
		yamlArtifacts[name] = struct{}{}
	}
	for name := range yamlItemNames {
		yamlArtifacts[name] = struct{}{}
	}

	report := &Report{}
	report.analyze(yamlFilePaths, projectArtifacts, SourceYamlFilePath)
	report.analyze(yamlItemNames, projectArtifacts, SourceYamlItemName)
	report.analyze(projectArtifacts, yamlArtifacts, SourceProject)
	return report, nil
}

func loadParameterFile(fs afero.Fs, workspacePath string) (*parameterFile, error) {
	yamlPath := filepath.Join(workspacePath, ParameterFileName)
	data, err := afero.ReadFile(fs, yamlPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf("%s was not found at the specified path %q", ParameterFileName, workspacePath)
		}
		return nil, errors.Wrapf(err, "cannot read %s", yamlPath)
	}

	// an empty document is an error, a document without replacement
	// entries is not
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrapf(err, "failed to parse the yaml file at %q", yamlPath)
	}
	if len(raw) == 0 {
		return nil, errors.Newf("no valid data found in the yaml file at %q", yamlPath)
	}

	var params parameterFile
	if err := yaml.Unmarshal(data, &params); err != nil {
		return nil, errors.Wrapf(err, "failed to parse the yaml file at %q", yamlPath)
	}
	return &params, nil
}

// artifactPathPattern matches the artifact folder inside a file_path
// value, e.g. "path/to/thing.Notebook/notebook-content.py" captures
// "thing.Notebook". Wildcard and recursive path segments never match.
func artifactPathPattern(artifactTypes []string) (*regexp.Regexp, error) {
	quoted := make([]string, len(artifactTypes))
	for i, t := range artifactTypes {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.Compile(`([^/*]+\.(?:` + strings.Join(quoted, "|") + `))`)
}

func artifactNameFromPath(filePath string, pattern *regexp.Regexp) (string, bool) {
	match := pattern.FindStringSubmatch(filePath)
	if match == nil {
		return "", false
	}
	// strip the item type suffix from the folder name
	name := match[1]
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[:idx]
	}
	return name, true
}

// findProjectArtifacts walks the workspace for artifact folders of the
// desired types. Excluded paths are pruned; folders we cannot read are
// skipped silently, matching how deployments treat them.
func findProjectArtifacts(fs afero.Fs, basePath string, artifactTypes []string, excludedPaths []string) (map[string]struct{}, error) {
	excluded := map[string]struct{}{}
	for _, rel := range excludedPaths {
		excluded[filepath.Clean(filepath.Join(basePath, rel))] = struct{}{}
	}

	artifacts := map[string]struct{}{}
	err := afero.Walk(fs, basePath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if _, ok := excluded[filepath.Clean(path)]; ok {
			return filepath.SkipDir
		}
		for _, t := range artifactTypes {
			if strings.HasSuffix(info.Name(), "."+t) {
				artifacts[strings.TrimSuffix(info.Name(), "."+t)] = struct{}{}
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot scan the workspace at %q", basePath)
	}
	return artifacts, nil
}
