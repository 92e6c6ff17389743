// Package nutrition defines the domain model for the meal tracker:
// foods, logged meals, off days, settings, and weight samples.
//
// Derived nutrition values are snapshotted at log time. A MealEntry or
// Ingredient freezes its calories and macros when it is created; later
// edits to the referenced Food never rewrite history. Multi-ingredient
// meal totals are the only exception: they are recomputed from the
// (already frozen) ingredient values and never stored independently.
//
// Malformed input (non-positive portions, negative grams, unknown meal
// types) is rejected here, at the write boundary. Downstream consumers
// (the aggregation engine in particular) assume well-formed values.
package nutrition
