package generator

// Package generator materializes concrete sessions from weekly templates
// across a date range. Expansion is a pure function over the templates and
// the calendar: identical inputs produce a byte-identical session sequence.
