// Copyright (c) 2017 Intel Corporation
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

package visualization

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/tu-dresden/verticut/pkg/metadata"
)

// resultColumns are keys of recorded run results in display order.
var resultColumns = []string{"target", "kind", "payload_size", "min", "avg", "stddev", "max", "count"}

// ResultsTable builds table of recorded run results ordered by target, kind and payload size.
func ResultsTable(results []map[string]string) *Table {
	sorted := append([]map[string]string{}, results...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a["target"] != b["target"] {
			return a["target"] < b["target"]
		}
		if a["kind"] != b["kind"] {
			return a["kind"] < b["kind"]
		}
		sizeA, _ := strconv.Atoi(a["payload_size"])
		sizeB, _ := strconv.Atoi(b["payload_size"])
		return sizeA < sizeB
	})

	table := NewTable(resultColumns, nil)
	for _, result := range sorted {
		row := make([]string, len(resultColumns))
		for i, column := range resultColumns {
			row[i] = result[column]
		}
		table.Append(row...)
	}
	return table
}

// DrawResults prints results recorded for the experiment.
func DrawResults(w io.Writer, experimentID string, recorder metadata.Metadata) error {
	results, err := recorder.GetByKind(metadata.TypeResult)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Experiment id: %s\n", experimentID)
	ResultsTable(results).Draw(w)
	return nil
}
