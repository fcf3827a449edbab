package vfs

import (
	"path/filepath"
	"strings"
)

// Filter decides which (process, file) pairs get transcoded.
type Filter struct {
	processes  map[string]struct{}
	extensions map[string]struct{}
}

// NewFilter builds a Filter. Matching is case-insensitive. An empty process
// list matches every process; an empty extension list matches no file.
func NewFilter(processes, extensions []string) *Filter {
	return &Filter{
		processes:  lowerSet(processes),
		extensions: lowerSet(extensions),
	}
}

func lowerSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			set[item] = struct{}{}
		}
	}
	return set
}

// ShouldProcess reports whether path opened by processName is transcoded.
func (f *Filter) ShouldProcess(processName string, path string) bool {
	return f.matchProcess(processName) && f.matchExtension(path)
}

func (f *Filter) matchProcess(name string) bool {
	if len(f.processes) == 0 {
		return true
	}
	_, ok := f.processes[strings.ToLower(name)]
	return ok
}

func (f *Filter) matchExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return false
	}
	_, ok := f.extensions[ext]
	return ok
}
