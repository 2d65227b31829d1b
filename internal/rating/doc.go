// Package rating implements the reputation computation stages: reviewer
// credibility, per-review weights, aggregation, quality scoring and
// inactivity decay. Every function is pure; callers supply the reviews and
// the evaluation instant.
package rating
