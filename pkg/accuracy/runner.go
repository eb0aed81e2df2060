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

package accuracy

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/tu-dresden/verticut/pkg/conf"
	"github.com/tu-dresden/verticut/pkg/executor"
	"github.com/tu-dresden/verticut/pkg/utils/fs"
	"github.com/tu-dresden/verticut/pkg/utils/random"
	"github.com/tu-dresden/verticut/pkg/visualization"
	"github.com/tu-dresden/verticut/pkg/workloads/imagesearch"
)

var (
	kFlag            = conf.NewSliceFlag("accuracy_k", "Numbers of nearest neighbors compared", "3", "100", "500", "1000")
	approxFactorFlag = conf.NewIntFlag("accuracy_approx_factor", "Approximate search asks for this many times more neighbors", 20)
	imageTotalFlag   = conf.NewIntFlag("accuracy_image_total", "Number of images searched, queries are drawn from [0, total]", 100000000)
	iterationsFlag   = conf.NewIntFlag("accuracy_iterations", "Number of random queries", 10)
)

// Config of the accuracy comparison.
type Config struct {
	// Ks are window lengths compared for every query.
	Ks           []int
	ApproxFactor int
	ImageTotal   int
	Iterations   int
	// Search is a template of both searches. K, image count, query and mode are overridden.
	Search imagesearch.Config
}

// ConfigFromFlags returns config from flags. Search template is configured with search flags.
func ConfigFromFlags() (Config, error) {
	search, err := imagesearch.ConfigFromFlags()
	if err != nil {
		return Config{}, err
	}

	var ks []int
	for _, value := range kFlag.Value() {
		k, err := strconv.Atoi(value)
		if err != nil || k < 1 {
			return Config{}, errors.Errorf("invalid number of neighbors %q", value)
		}
		ks = append(ks, k)
	}
	return Config{
		Ks:           ks,
		ApproxFactor: approxFactorFlag.Value(),
		ImageTotal:   imageTotalFlag.Value(),
		Iterations:   iterationsFlag.Value(),
		Search:       search,
	}, nil
}

// Averages are running means of comparisons of one window length.
type Averages struct {
	K               int
	Ratio           float64
	ApproximateMean float64
	ExactMean       float64
	ApproximateTime time.Duration
	ExactTime       time.Duration
	Samples         int
}

// accumulator keeps all measurements of one window length.
type accumulator struct {
	ratios, approximateMeans, exactMeans, approximateTimes, exactTimes stats.Float64Data
}

func (a *accumulator) add(comparison Comparison, approximateTime, exactTime time.Duration) {
	a.ratios = append(a.ratios, comparison.Ratio)
	a.approximateMeans = append(a.approximateMeans, comparison.ApproximateMean)
	a.exactMeans = append(a.exactMeans, comparison.ExactMean)
	a.approximateTimes = append(a.approximateTimes, approximateTime.Seconds())
	a.exactTimes = append(a.exactTimes, exactTime.Seconds())
}

func mean(data stats.Float64Data) float64 {
	// Mean fails on empty input only.
	value, _ := data.Mean()
	return value
}

func (a *accumulator) averages(k int) Averages {
	return Averages{
		K:               k,
		Ratio:           mean(a.ratios),
		ApproximateMean: mean(a.approximateMeans),
		ExactMean:       mean(a.exactMeans),
		ApproximateTime: time.Duration(mean(a.approximateTimes) * float64(time.Second)),
		ExactTime:       time.Duration(mean(a.exactTimes) * float64(time.Second)),
		Samples:         len(a.ratios),
	}
}

// Runner repeats approximate and exact searches of random queries and compares their results.
type Runner struct {
	conf Config
	out  io.Writer
	// Query returns query id of the next iteration.
	Query func() int
	// Search returns launcher of the search described by config.
	Search func(config imagesearch.Config) executor.Launcher
}

// NewRunner returns runner printing running averages to out.
func NewRunner(exec executor.Executor, config Config, out io.Writer) *Runner {
	return &Runner{
		conf:   config,
		out:    out,
		Query:  func() int { return random.Int(config.ImageTotal) },
		Search: func(config imagesearch.Config) executor.Launcher {
			return imagesearch.New(exec, config)
		},
	}
}

// Run runs all iterations and returns final averages per window length.
// Comparisons of mismatched windows are discarded. Failures to run searches abort.
func (r *Runner) Run() ([]Averages, error) {
	accumulators := make([]accumulator, len(r.conf.Ks))
	for iteration := 0; iteration < r.conf.Iterations; iteration++ {
		query := r.Query()
		logrus.Infof("Iteration %d: query %d", iteration, query)

		for i, k := range r.conf.Ks {
			comparison, approximateTime, exactTime, err := r.compare(query, k)
			if err != nil {
				if errors.Cause(err) == ErrLengthMismatch || errors.Cause(err) == ErrEmptyWindow {
					logrus.Errorf("Iteration %d, k %d discarded: %v", iteration, k, err)
					continue
				}
				return r.averages(accumulators), err
			}
			accumulators[i].add(comparison, approximateTime, exactTime)
		}

		fmt.Fprintf(r.out, "%d th iteration:\n", iteration)
		r.render(r.averages(accumulators))
	}
	return r.averages(accumulators), nil
}

func (r *Runner) averages(accumulators []accumulator) []Averages {
	averages := make([]Averages, len(accumulators))
	for i := range accumulators {
		averages[i] = accumulators[i].averages(r.conf.Ks[i])
	}
	return averages
}

func (r *Runner) searchConfig(query, k int, approximate bool) imagesearch.Config {
	config := r.conf.Search
	config.ImageCount = r.conf.ImageTotal
	config.QueryID = query
	config.Approximate = approximate
	config.K = k
	if approximate {
		config.K = k * r.conf.ApproxFactor
	}
	return config
}

// compare runs approximate and exact searches of query at the same time and compares last k neighbors.
func (r *Runner) compare(query, k int) (comparison Comparison, approximateTime, exactTime time.Duration, err error) {
	approximate, err := r.Search(r.searchConfig(query, k, true)).Launch()
	if err != nil {
		return comparison, 0, 0, errors.Wrap(err, "cannot start approximate search")
	}
	defer executor.StopCleanAndErase(approximate)

	exact, err := r.Search(r.searchConfig(query, k, false)).Launch()
	if err != nil {
		return comparison, 0, 0, errors.Wrap(err, "cannot start exact search")
	}
	defer executor.StopCleanAndErase(exact)

	approximateOutput, approximateTime, err := waitForOutput(approximate)
	if err != nil {
		return comparison, 0, 0, err
	}
	exactOutput, exactTime, err := waitForOutput(exact)
	if err != nil {
		return comparison, 0, 0, err
	}

	comparison, err = Compare(Window(approximateOutput, k), Window(exactOutput, k))
	return comparison, approximateTime, exactTime, err
}

// waitForOutput waits for the search to end and returns its output and time spent waiting.
func waitForOutput(handle executor.TaskHandle) ([]string, time.Duration, error) {
	start := time.Now()
	handle.Wait(0)
	elapsed := time.Since(start)

	if exitCode, err := handle.ExitCode(); err == nil && exitCode != 0 {
		logrus.Warnf("Search %v exited with %d", handle, exitCode)
	}

	file, err := handle.StdoutFile()
	if err != nil {
		return nil, elapsed, errors.Wrap(err, "cannot read search output")
	}
	file.Close()

	lines, err := fs.ReadLines(file.Name())
	return lines, elapsed, err
}

func (r *Runner) render(averages []Averages) {
	table := visualization.NewTable([]string{"k", "accuracy", "approximate distance", "exact distance", "approximate time", "exact time", "samples"}, nil)
	for _, average := range averages {
		table.Append(
			fmt.Sprint(average.K),
			fmt.Sprintf("%.4f", average.Ratio),
			fmt.Sprintf("%.4f", average.ApproximateMean),
			fmt.Sprintf("%.4f", average.ExactMean),
			average.ApproximateTime.String(),
			average.ExactTime.String(),
			fmt.Sprint(average.Samples),
		)
	}
	table.Draw(r.out)
}

// Metadata returns averages as a map recorded by metadata backend.
func Metadata(average Averages) map[string]string {
	return map[string]string{
		"k":                    fmt.Sprint(average.K),
		"accuracy":             fmt.Sprint(average.Ratio),
		"approximate_distance": fmt.Sprint(average.ApproximateMean),
		"exact_distance":       fmt.Sprint(average.ExactMean),
		"approximate_time":     average.ApproximateTime.String(),
		"exact_time":           average.ExactTime.String(),
		"samples":              fmt.Sprint(average.Samples),
	}
}
