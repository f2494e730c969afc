package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mwembed/mwembed/icon"
	"github.com/mwembed/mwembed/key"
	"github.com/samber/lo"
	"golang.org/x/exp/slices"
)

// options lists the accepted values of enumerated keys.
var options = map[string][]string{
	key.URLTimeEncoding: {"none", "always", "plugin"},
	key.LogsLevel:       {"panic", "fatal", "error", "warn", "info", "debug", "trace"},
	key.IconsVariant:    icon.AvailableVariants(),
}

var (
	boxPattern    = regexp.MustCompile(`^\d+x\d+$`)
	aspectPattern = regexp.MustCompile(`^[1-9]\d*:[1-9]\d*$`)
)

// Section returns the group a key belongs to, e.g. "embedplayer" for "embedplayer.monitor_rate".
func Section(k string) string {
	section, _, _ := strings.Cut(k, ".")
	return section
}

// Sections returns every section of the registered keys, sorted.
func Sections() []string {
	sections := lo.Uniq(lo.Map(lo.Keys(Default), func(k string, _ int) string {
		return Section(k)
	}))
	slices.Sort(sections)
	return sections
}

// Options returns the accepted values of k, if it is enumerated.
func Options(k string) ([]string, bool) {
	opts, ok := options[k]
	return opts, ok
}

// Validate reports whether v is an acceptable value for k.
func Validate(k string, v any) error {
	if opts, ok := options[k]; ok {
		if s := fmt.Sprint(v); !lo.Contains(opts, s) {
			return fmt.Errorf("%s must be one of %s, got %q", k, strings.Join(opts, ", "), s)
		}
		return nil
	}

	switch k {
	case key.DefaultSize:
		if !boxPattern.MatchString(fmt.Sprint(v)) {
			return fmt.Errorf("%s must look like WIDTHxHEIGHT, got %q", k, v)
		}
	case key.VideoAspect:
		if !aspectPattern.MatchString(fmt.Sprint(v)) {
			return fmt.Errorf("%s must look like W:H, got %q", k, v)
		}
	case key.AttrVolume:
		if f, err := strconv.ParseFloat(fmt.Sprint(v), 64); err != nil || f < 0 || f > 1 {
			return fmt.Errorf("%s must be between 0 and 1, got %v", k, v)
		}
	case key.MonitorRate, key.WaitForMetaTimeout:
		if n, err := strconv.Atoi(fmt.Sprint(v)); err != nil || n <= 0 {
			return fmt.Errorf("%s must be a positive number of milliseconds, got %v", k, v)
		}
	case key.SeekResumeDelay, key.VolumeTolerance, key.LookupCacheLifetime:
		if n, err := strconv.Atoi(fmt.Sprint(v)); err != nil || n < 0 {
			return fmt.Errorf("%s must not be negative, got %v", k, v)
		}
	}
	return nil
}
