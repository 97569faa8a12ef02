package gate

import (
	"sort"

	"RiskGate/internal/domain/models"
)

// Policy is the allowed/forbidden behavior pair for one risk level.
type Policy struct {
	Allowed   []models.BehaviorType
	Forbidden []models.BehaviorType
}

// The fixed policy table. Across stable -> elevated -> unstable -> critical
// the allowed set weakly shrinks and the forbidden set weakly grows.
var policies = map[models.RiskLevel]Policy{
	models.RiskStable: {
		Allowed: []models.BehaviorType{
			models.BehaviorTrendFollowing,
			models.BehaviorMeanReversion,
			models.BehaviorCarry,
			models.BehaviorLiquidityProviding,
			models.BehaviorVolatilityExpansion,
			models.BehaviorConvexStructures,
		},
		Forbidden: nil,
	},
	models.RiskElevated: {
		Allowed: []models.BehaviorType{
			models.BehaviorMeanReversion,
			models.BehaviorLiquidityProviding,
			models.BehaviorHedgingOnly,
			models.BehaviorVolatilityExpansion,
		},
		Forbidden: []models.BehaviorType{
			models.BehaviorTrendFollowing,
			models.BehaviorCarry,
		},
	},
	models.RiskUnstable: {
		Allowed: []models.BehaviorType{
			models.BehaviorHedgingOnly,
			models.BehaviorVolatilityExpansion,
			models.BehaviorConvexStructures,
			models.BehaviorReduceExposure,
		},
		Forbidden: []models.BehaviorType{
			models.BehaviorTrendFollowing,
			models.BehaviorMeanReversion,
			models.BehaviorCarry,
			models.BehaviorLiquidityProviding,
		},
	},
	models.RiskCritical: {
		Allowed: []models.BehaviorType{
			models.BehaviorHedgingOnly,
			models.BehaviorReduceExposure,
		},
		Forbidden: []models.BehaviorType{
			models.BehaviorTrendFollowing,
			models.BehaviorMeanReversion,
			models.BehaviorCarry,
			models.BehaviorLiquidityProviding,
			models.BehaviorVolatilityExpansion,
			models.BehaviorConvexStructures,
		},
	},
}

// PolicyFor returns the behavior policy for a risk level, both lists sorted
// by canonical behavior name. Unknown levels map to the stable policy.
func PolicyFor(level models.RiskLevel) Policy {
	p, ok := policies[level]
	if !ok {
		p = policies[models.RiskStable]
	}
	return Policy{
		Allowed:   sortedCopy(p.Allowed),
		Forbidden: sortedCopy(p.Forbidden),
	}
}

func sortedCopy(in []models.BehaviorType) []models.BehaviorType {
	out := make([]models.BehaviorType, len(in))
	copy(out, in)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
