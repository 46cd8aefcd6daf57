// Package graph defines the scene graph for lathe.
// The scene graph is an immutable DAG of shapes, transforms and groups
// produced by evaluating a scene description. Tessellation walks it from
// the roots; nothing mutates it after evaluation.
package graph
