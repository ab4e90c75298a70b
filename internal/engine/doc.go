// Package engine orchestrates the segmentation pipeline.
//
// One Run proceeds analyzer -> tokenizer -> segmenter -> aggregator ->
// grouper. The engine owns none of the heuristics; it sequences the stage
// packages, carries run statistics, and honors context cancellation at the
// stage boundaries.
//
//	eng := engine.New(engine.Config{RepoDir: dir})
//	run, err := eng.SegmentCommit(ctx, "HEAD")
//
// Segment works on raw diff text; SegmentCommit shells out to git first and
// attaches the parsed commit metadata to the run. When the external
// analyzer did not serve the run, working-tree definitions are attached to
// each resolved change before grouping.
package engine
