// Package pathfinder searches the implicit movie graph, where two movies are adjacent when they
// share a cast or crew member.
//
// The graph is never materialized. Neighbors are produced on demand by an Expander, which caps
// the fan-out of every expansion at PeopleLimit people times FilmographyLimit movies per person.
// The Engine runs a bidirectional best-first search from both ends, parameterized by a Strategy
// that turns an accumulated cost into a queue priority:
//
//   - UniformCost: unit edge weights, priority = cost. Stops only once the meeting total is
//     provably minimal for the capped graph.
//   - HeuristicGuided: priority = cost + CastOverlap estimate. Stops at the first meeting and is
//     therefore approximate.
//
// A Formatter turns the resulting movie ids into display steps with the shared person for every
// hop.
package pathfinder
