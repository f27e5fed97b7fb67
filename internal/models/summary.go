package models

import "time"

// PipelineSummary describes one preprocess → mine → build pass
type PipelineSummary struct {
	Source   string        // Transcript name, empty for in-memory input
	Events   int           // Raw events fed in
	Runs     int           // Merged runs after preprocessing
	Patterns int           // Chains that met the frequency threshold
	Leaves   int           // Root-to-leaf chains in the tree
	Nodes    int           // Tree nodes including the root
	Visible  int           // Nodes visible after the pass
	Skipped  int           // Malformed input lines that were dropped
	Scored   bool          // Whether duration-aware scoring ran
	Duration time.Duration // Wall time of the pass
}
