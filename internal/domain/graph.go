package domain

import "github.com/google/uuid"

// DependencyEdges builds the adjacency map task -> prerequisites for a set of
// tasks, the shape WouldCreateCycle consumes.
func DependencyEdges(tasks []*Task) map[uuid.UUID][]uuid.UUID {
	edges := make(map[uuid.UUID][]uuid.UUID, len(tasks))
	for _, t := range tasks {
		if len(t.Dependencies) > 0 {
			edges[t.ID] = t.Dependencies
		}
	}
	return edges
}

// WouldCreateCycle reports whether adding the edge from -> to (task `from`
// depends on task `to`) would make the dependency relation cyclic. The check
// is a DFS over the existing edges: the new edge closes a cycle exactly when
// `from` is already reachable from `to`. A self-edge is always a cycle.
func WouldCreateCycle(edges map[uuid.UUID][]uuid.UUID, from, to uuid.UUID) bool {
	if from == to {
		return true
	}

	seen := make(map[uuid.UUID]bool, len(edges))
	stack := []uuid.UUID{to}

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if n == from {
			return true
		}
		if seen[n] {
			continue
		}
		seen[n] = true

		stack = append(stack, edges[n]...)
	}

	return false
}
