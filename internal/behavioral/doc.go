// Package behavioral turns a classroom transcript into recurring behaviour
// chains.
//
// The pipeline is strictly forward:
//   - Preprocess folds consecutive events with the same abbreviation into runs
//   - PatternMiner slides every n-gram window (2..MaxPatternLength) over the
//     run sequence and keeps the chains seen at least MinPatternCount times
//   - Scorer rates each occurrence of a chain from the durations encoded in
//     the event ids and averages the ratings
//   - ExtractPatternDetails recovers the first transcript excerpt of a chain
//
// Every function here is pure with respect to its arguments. Unknown labels
// pass through unabbreviated, unparseable ids count as zero-length, and an
// empty transcript produces empty results rather than errors.
//
// Example usage:
//
//	transcript, err := behavioral.ParseTranscriptFile("lesson.jsonl")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	vocab := behavioral.DefaultVocabulary()
//	runs := behavioral.Preprocess(transcript.Events, vocab)
//	miner := behavioral.NewPatternMiner(behavioral.DefaultMiningOptions(), vocab)
//	patterns := miner.Mine(runs, transcript.Events)
package behavioral
