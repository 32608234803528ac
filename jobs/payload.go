// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package jobs

// JobType selects the job-instance handler on the platform side. The
// values are dictated by the fabric REST API.
type JobType string

const (
	JobTypePipeline JobType = "Pipeline"
	JobTypeNotebook JobType = "RunNotebook"
	JobTypeDataflow JobType = "Refresh"
)

// PipelineParameters is the flat name-to-value mapping a pipeline run
// accepts.
type PipelineParameters map[string]any

// NotebookParameter is a single typed notebook parameter. Valid types
// are string, int, float and bool.
type NotebookParameter struct {
	Value any    `json:"value"`
	Type  string `json:"type"`
}

// NotebookParameters maps parameter names to typed values.
type NotebookParameters map[string]NotebookParameter

// Lakehouse identifies the default lakehouse a notebook session is
// attached to.
type Lakehouse struct {
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}

// NotebookConfiguration carries session configuration for a notebook
// run.
type NotebookConfiguration struct {
	DefaultLakehouse *Lakehouse `json:"defaultLakehouse,omitempty"`
}

// DataflowParameter is one entry of the ordered parameter list a
// dataflow refresh accepts.
type DataflowParameter struct {
	ParameterName string `json:"parameterName"`
	Type          string `json:"type"`
	Value         any    `json:"value"`
}

type pipelineExecutionData struct {
	Parameters PipelineParameters `json:"parameters,omitempty"`
}

type notebookExecutionData struct {
	Parameters    NotebookParameters     `json:"parameters,omitempty"`
	Configuration *NotebookConfiguration `json:"configuration,omitempty"`
}

type dataflowExecutionData struct {
	Parameters []DataflowParameter `json:"parameters,omitempty"`
}

type runRequest struct {
	ExecutionData any `json:"executionData,omitempty"`
}

// PipelinePayload builds the run request body for a pipeline job.
func PipelinePayload(params PipelineParameters) any {
	if len(params) == 0 {
		return runRequest{}
	}
	return runRequest{ExecutionData: pipelineExecutionData{Parameters: params}}
}

// NotebookPayload builds the run request body for a notebook job.
func NotebookPayload(params NotebookParameters, config *NotebookConfiguration) any {
	if len(params) == 0 && config == nil {
		return runRequest{}
	}
	return runRequest{ExecutionData: notebookExecutionData{
		Parameters:    params,
		Configuration: config,
	}}
}

// DataflowPayload builds the run request body for a dataflow refresh.
// Parameter order is preserved.
func DataflowPayload(params []DataflowParameter) any {
	if len(params) == 0 {
		return runRequest{}
	}
	return runRequest{ExecutionData: dataflowExecutionData{Parameters: params}}
}
