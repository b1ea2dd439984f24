/*
Package nodeid provides the structured address of a node inside an
assembled scene.

Addresses are written as a dot-separated sequence of segments, each with an
optional instance index, e.g. `props.chair[0].cushion`. Scene
scripts name nodes with this syntax and the builder rejects duplicates by
comparing canonical strings.
*/
package nodeid
