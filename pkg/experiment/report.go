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

package experiment

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-dresden/verticut/pkg/summary"
	"github.com/tu-dresden/verticut/pkg/visualization"
	"github.com/tu-dresden/verticut/pkg/workloads"
)

// RunResult is a reduced completed run.
type RunResult struct {
	Point   SweepPoint
	Summary summary.Summary
}

// fixed renders value with six decimals.
func fixed(value float64) string {
	return decimal.NewFromFloat(value).StringFixed(6)
}

// Fields returns result as printed row: kind code, payload size, min, avg, stddev, max and count.
func (r RunResult) Fields() []string {
	fields := []string{r.Point.Kind.Code(), fmt.Sprint(r.Point.PayloadSize)}
	for _, value := range r.Summary.Row() {
		fields = append(fields, fixed(value))
	}
	return append(fields, fmt.Sprint(r.Summary.Count))
}

// Metadata returns result as a map recorded by metadata backend.
func (r RunResult) Metadata() map[string]string {
	return map[string]string{
		"target":       r.Point.Target.String(),
		"kind":         r.Point.Kind.String(),
		"payload_size": fmt.Sprint(r.Point.PayloadSize),
		"min":          fixed(r.Summary.Min),
		"avg":          fixed(r.Summary.Avg),
		"stddev":       fixed(r.Summary.StdDev),
		"max":          fixed(r.Summary.Max),
		"count":        fmt.Sprint(r.Summary.Count),
	}
}

func writeRow(w io.Writer, fields []string) {
	for i, field := range fields {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, field)
	}
	fmt.Fprintln(w)
}

// writeResult prints throughput style result row.
func writeResult(w io.Writer, result RunResult) {
	writeRow(w, result.Fields())
}

// writeLatency prints one row per latency sample.
func writeLatency(w io.Writer, point SweepPoint, values []float64) {
	for _, value := range values {
		writeRow(w, []string{workloads.Latency.Code(), fmt.Sprint(point.PayloadSize), fixed(value)})
	}
}

// Report accumulates results of the sweep.
type Report struct {
	Results []RunResult
}

// Add appends result.
func (r *Report) Add(result RunResult) {
	r.Results = append(r.Results, result)
}

// ByKind groups results by test kind. Kinds are ordered by first appearance.
func (r *Report) ByKind() ([]workloads.TestKind, map[workloads.TestKind][]RunResult) {
	var kinds []workloads.TestKind
	grouped := map[workloads.TestKind][]RunResult{}
	for _, result := range r.Results {
		kind := result.Point.Kind
		if _, ok := grouped[kind]; !ok {
			kinds = append(kinds, kind)
		}
		grouped[kind] = append(grouped[kind], result)
	}
	return kinds, grouped
}

// Summary renders accumulated results as one table per test kind.
func (r *Report) Summary(w io.Writer) {
	kinds, grouped := r.ByKind()
	for _, kind := range kinds {
		results := grouped[kind]
		sort.SliceStable(results, func(i, j int) bool {
			if results[i].Point.Target != results[j].Point.Target {
				return results[i].Point.Target < results[j].Point.Target
			}
			return results[i].Point.PayloadSize < results[j].Point.PayloadSize
		})

		fmt.Fprintf(w, "%s\n", kind)
		table := visualization.NewTable([]string{"target", "payload size", "min", "avg", "stddev", "max", "samples"}, nil)
		for _, result := range results {
			fields := result.Fields()
			table.Append(append([]string{result.Point.Target.String()}, fields[1:]...)...)
		}
		table.Draw(w)
	}
}
