// Copyright (C) 2017 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// The portdump command decodes portable binary object streams and prints
// the decoded values as structured text.
package main

import (
	"context"
	"os"
)

func main() {
	ctx := context.Background()
	cmd := newCommand(ctx, env{stdout: os.Stdout, stderr: os.Stderr})
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
