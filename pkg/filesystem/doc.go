// Package filesystem provides an ignore-aware directory walk with smart
// defaults for Flutter and Go projects.
//
// # Overview
//
// Tool output and dependency caches (.dart_tool, build, Pods, vendor) are
// skipped by default so a single traversal only visits project sources:
//
//	err := filesystem.Walk(".", filesystem.WalkOptions{}, func(path string, info os.FileInfo) error {
//	    fmt.Println(path)
//	    return nil
//	})
//
// Entry errors abort the walk unless WalkOptions.OnError is set, in which
// case the entry is reported and skipped:
//
//	err := filesystem.Walk(root, filesystem.WalkOptions{
//	    OnError: func(path string, err error) { failed++ },
//	}, visit)
package filesystem
