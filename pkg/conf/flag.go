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

package conf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/alecthomas/kingpin.v2"
)

// flagType is an internal interface for all flags.
// Every flag should have method for creating `envName` from its name, `clear` method
// for clearing corresponding environment variable from env and a way to render
// its current value.
type flagType interface {
	envName() string
	clear()
	stringValue() string
}

// definedFlags is a package variable which stores all the defined flags. It helps to find
// duplicates when defining flag with the same name.
var definedFlags = map[string]flagType{}

// cliAndEnvFlag represents option's definition from CLI and Environment variable.
type cliAndEnvFlag struct {
	*kingpin.FlagClause
}

func newCliAndEnvFlag(flagName string, description string, defaultValues ...string) *cliAndEnvFlag {
	if definedFlags[flagName] != nil {
		panic(fmt.Sprintf("flag %q was already defined", flagName))
	}

	c := &cliAndEnvFlag{FlagClause: app.Flag(flagName, description)}
	c.OverrideDefaultFromEnvar(c.envName())

	for _, defaultValue := range defaultValues {
		if defaultValue == "" {
			continue
		}
		c.Default(defaultValue)
	}

	return c
}

// envName returns name converted to environment variable name.
// For instance: "cassandra_addr" will be "VERTICUT_CASSANDRA_ADDR".
func (f *cliAndEnvFlag) envName() string {
	return fmt.Sprintf("%s_%s", EnvPrefix, strings.ToUpper(f.Model().Name))
}

// clear unset the corresponded environment variable.
func (f *cliAndEnvFlag) clear() {
	os.Unsetenv(f.envName())
}

// redefined returns already registered flag of type T. It panics when the flag was
// registered with a different type, which is a programmer error.
func redefined(flagName string, check func(flagType) bool) flagType {
	duplicated := definedFlags[flagName]
	if duplicated == nil {
		return nil
	}
	if !check(duplicated) {
		panic(fmt.Sprintf("flag %q was redefined with different type or default value", flagName))
	}
	return duplicated
}

// StringFlag represents flag with string value.
type StringFlag struct {
	*cliAndEnvFlag
	defaultValue string
	value        *string
}

// NewStringFlag is a constructor of StringFlag struct.
func NewStringFlag(flagName string, description string, defaultValue string) *StringFlag {
	if f := redefined(flagName, func(f flagType) bool {
		s, ok := f.(*StringFlag)
		return ok && s.defaultValue == defaultValue
	}); f != nil {
		return f.(*StringFlag)
	}

	flagDef := &StringFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, defaultValue),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.String()
	definedFlags[flagName] = flagDef
	isEnvParsed = false
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (s StringFlag) Value() string {
	if !isEnvParsed {
		return s.defaultValue
	}
	return *s.value
}

func (s StringFlag) stringValue() string {
	return s.Value()
}

// FileFlag represents flag with path to existing file.
type FileFlag struct {
	*StringFlag
}

// NewFileFlag is a constructor of FileFlag struct which checks if file exists when parsed.
func NewFileFlag(flagName string, description string, defaultValue string) *FileFlag {
	if f := redefined(flagName, func(f flagType) bool {
		s, ok := f.(*FileFlag)
		return ok && s.defaultValue == defaultValue
	}); f != nil {
		return f.(*FileFlag)
	}

	flagDef := &FileFlag{
		StringFlag: &StringFlag{
			cliAndEnvFlag: newCliAndEnvFlag(flagName, description, defaultValue),
			defaultValue:  defaultValue,
		},
	}
	flagDef.value = flagDef.ExistingFile()
	definedFlags[flagName] = flagDef
	isEnvParsed = false
	return flagDef
}

// IntFlag represents flag with int value.
type IntFlag struct {
	*cliAndEnvFlag
	defaultValue int
	value        *int
}

// NewIntFlag is a constructor of IntFlag struct.
func NewIntFlag(flagName string, description string, defaultValue int) *IntFlag {
	if f := redefined(flagName, func(f flagType) bool {
		i, ok := f.(*IntFlag)
		return ok && i.defaultValue == defaultValue
	}); f != nil {
		return f.(*IntFlag)
	}

	flagDef := &IntFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, fmt.Sprintf("%d", defaultValue)),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.Int()
	definedFlags[flagName] = flagDef
	isEnvParsed = false
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (i IntFlag) Value() int {
	if !isEnvParsed {
		return i.defaultValue
	}
	return *i.value
}

func (i IntFlag) stringValue() string {
	return fmt.Sprintf("%d", i.Value())
}

// SliceFlag represents flag with slice value.
type SliceFlag struct {
	*cliAndEnvFlag
	defaultValue []string
	value        *[]string
}

// NewSliceFlag is a constructor of SliceFlag struct.
func NewSliceFlag(flagName string, description string, elemsInDefaultSlice ...string) *SliceFlag {
	if f := redefined(flagName, func(f flagType) bool {
		s, ok := f.(*SliceFlag)
		return ok && strings.Join(s.defaultValue, ",") == strings.Join(elemsInDefaultSlice, ",")
	}); f != nil {
		return f.(*SliceFlag)
	}

	flagDef := &SliceFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, strings.Join(elemsInDefaultSlice, stringListDelimiter)),
		defaultValue:  elemsInDefaultSlice,
	}
	flagDef.value = StringList(flagDef)
	definedFlags[flagName] = flagDef
	isEnvParsed = false
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (s SliceFlag) Value() []string {
	if !isEnvParsed {
		return s.defaultValue
	}
	return *s.value
}

func (s SliceFlag) stringValue() string {
	return strings.Join(s.Value(), stringListDelimiter)
}

// BoolFlag represents flag with bool value.
type BoolFlag struct {
	*cliAndEnvFlag
	defaultValue bool
	value        *bool
}

// NewBoolFlag is a constructor of BoolFlag struct.
func NewBoolFlag(flagName string, description string, defaultValue bool) *BoolFlag {
	if f := redefined(flagName, func(f flagType) bool {
		b, ok := f.(*BoolFlag)
		return ok && b.defaultValue == defaultValue
	}); f != nil {
		return f.(*BoolFlag)
	}

	flagDef := &BoolFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, fmt.Sprintf("%v", defaultValue)),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.Bool()
	definedFlags[flagName] = flagDef
	isEnvParsed = false
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (b BoolFlag) Value() bool {
	if !isEnvParsed {
		return b.defaultValue
	}
	return *b.value
}

func (b BoolFlag) stringValue() string {
	return fmt.Sprintf("%v", b.Value())
}

// DurationFlag represents flag with duration value.
type DurationFlag struct {
	*cliAndEnvFlag
	defaultValue time.Duration
	value        *time.Duration
}

// NewDurationFlag is a constructor of DurationFlag struct.
func NewDurationFlag(flagName string, description string, defaultValue time.Duration) *DurationFlag {
	if f := redefined(flagName, func(f flagType) bool {
		d, ok := f.(*DurationFlag)
		return ok && d.defaultValue == defaultValue
	}); f != nil {
		return f.(*DurationFlag)
	}

	flagDef := &DurationFlag{
		cliAndEnvFlag: newCliAndEnvFlag(flagName, description, defaultValue.String()),
		defaultValue:  defaultValue,
	}
	flagDef.value = flagDef.Duration()
	definedFlags[flagName] = flagDef
	isEnvParsed = false
	return flagDef
}

// Value returns value of defined flag after parse.
// NOTE: If conf is not parsed it returns default value (!)
func (d DurationFlag) Value() time.Duration {
	if !isEnvParsed {
		return d.defaultValue
	}
	return *d.value
}

func (d DurationFlag) stringValue() string {
	return d.Value().String()
}
