// Copyright (c) Mondoo, Inc.
// SPDX-License-Identifier: BUSL-1.1

package main

import (
	"go.mondoo.com/fabricops/apps/fabricops/cmd"
)

func main() {
	cmd.Execute()
}
