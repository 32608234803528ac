// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package validate

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// AnalysisSource names the direction of one comparison between the
// parameter file and the project tree.
type AnalysisSource string

const (
	// SourceYamlFilePath flags file_path entries that point at artifacts
	// missing from the project. Deploying with those breaks, so they are
	// errors.
	SourceYamlFilePath AnalysisSource = "yaml_file_path"
	// SourceYamlItemName flags item_name references missing from the
	// project.
	SourceYamlItemName AnalysisSource = "yaml_item_name"
	// SourceProject flags project artifacts that no parameter entry
	// references.
	SourceProject AnalysisSource = "project"
)

type reportConfig struct {
	foundMsg    string
	notFoundMsg string
	resultStart string
	resultEnd   string
	level       zerolog.Level
}

// Per-analysis report wording. file_path findings are errors, the other
// two are warnings.
var reportConfigs = map[AnalysisSource]reportConfig{
	SourceYamlFilePath: {
		foundMsg:    "the parameter file contains wrong file_path entries, fix them before deploying",
		notFoundMsg: "no invalid file_path references found in the parameter file",
		resultStart: "the file_path entry containing ",
		resultEnd:   " was not found within the project",
		level:       zerolog.ErrorLevel,
	},
	SourceYamlItemName: {
		foundMsg:    "the parameter file contains invalid item_name references, check them before deploying",
		notFoundMsg: "no invalid item_name references found in the parameter file",
		resultStart: "the item_name reference for ",
		resultEnd:   " was not found within the project",
		level:       zerolog.WarnLevel,
	},
	SourceProject: {
		foundMsg:    "these artifacts are not included in the parameter file",
		notFoundMsg: "all project artifacts are referenced in the parameter file",
		resultStart: "artifact ",
		resultEnd:   " is not referenced, check if it should be or configure its exclusion",
		level:       zerolog.WarnLevel,
	},
}

// Finding is one missing reference discovered by an analysis.
type Finding struct {
	Source   AnalysisSource
	Artifact string
	Message  string
	Level    zerolog.Level
}

// Report collects the findings of all three analyses.
type Report struct {
	Findings []Finding
}

// analyze diffs one artifact set against another and records a finding
// for every element only present in the first.
func (r *Report) analyze(toAnalyze, toSubtract map[string]struct{}, source AnalysisSource) {
	cfg := reportConfigs[source]

	missing := []string{}
	for artifact := range toAnalyze {
		if _, ok := toSubtract[artifact]; !ok {
			missing = append(missing, artifact)
		}
	}

	if len(missing) == 0 {
		log.Info().Msg(cfg.notFoundMsg)
		return
	}

	sort.Strings(missing)
	log.Debug().Msg(cfg.foundMsg)
	for _, artifact := range missing {
		f := Finding{
			Source:   source,
			Artifact: artifact,
			Message:  cfg.resultStart + artifact + cfg.resultEnd,
			Level:    cfg.level,
		}
		log.WithLevel(f.Level).Msg(f.Message)
		r.Findings = append(r.Findings, f)
	}
}

// HasErrors reports whether any error-level finding exists. The CLI
// exits non-zero in that case.
func (r *Report) HasErrors() bool {
	for i := range r.Findings {
		if r.Findings[i].Level == zerolog.ErrorLevel {
			return true
		}
	}
	return false
}

// BySource returns the findings of one analysis.
func (r *Report) BySource(source AnalysisSource) []Finding {
	res := []Finding{}
	for i := range r.Findings {
		if r.Findings[i].Source == source {
			res = append(res, r.Findings[i])
		}
	}
	return res
}
