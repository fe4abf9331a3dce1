package loadbalance

import (
	"fmt"
	"math/rand"

	"kdbclient/registry"
)

// WeightedRandomBalancer selects hosts probabilistically based on their
// weight. A host with weight 10 gets roughly 2x the traffic of one with
// weight 5.
//
// Best for: heterogeneous hosts (e.g. some kdb+ processes have more
// CPU/memory, or are hdb vs. rdb and should take a different query share).
//
// Algorithm:
//  1. Sum all weights → totalWeight
//  2. Generate random number r in [0, totalWeight)
//  3. Subtract each instance's weight from r until r < 0
//  4. The instance that makes r negative is selected
type WeightedRandomBalancer struct{}

func (b *WeightedRandomBalancer) Pick(instances []registry.HostInstance) (*registry.HostInstance, error) {
	if len(instances) == 0 {
		return nil, fmt.Errorf("no instances available")
	}

	totalWeight := 0
	for _, v := range instances {
		totalWeight += v.Weight
	}
	if totalWeight <= 0 {
		return nil, fmt.Errorf("no positive total weight across %d instances", len(instances))
	}

	r := rand.Intn(totalWeight)
	for _, v := range instances {
		r -= v.Weight
		if r < 0 {
			return &v, nil
		}
	}

	return nil, fmt.Errorf("unexpected error in weighted random selection")
}

func (b *WeightedRandomBalancer) Name() string {
	return "WeightedRandom"
}
