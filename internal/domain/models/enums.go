package models

// PressureType classifies the kind of market pressure a detector emits.
type PressureType string

const (
	PressureVolatility    PressureType = "volatility"
	PressureLiquidity     PressureType = "liquidity"
	PressureCorrelation   PressureType = "correlation"
	PressureConcentration PressureType = "concentration"
	PressureMomentum      PressureType = "momentum"
	PressureReversal      PressureType = "reversal"
)

// IsValidPressureType returns true if pt is a supported pressure type.
func IsValidPressureType(pt PressureType) bool {
	switch pt {
	case PressureVolatility, PressureLiquidity, PressureCorrelation,
		PressureConcentration, PressureMomentum, PressureReversal:
		return true
	default:
		return false
	}
}

// Directionality is the qualitative sign of a pressure's market bias.
type Directionality string

const (
	DirPositive Directionality = "positive"
	DirNegative Directionality = "negative"
	DirNeutral  Directionality = "neutral"
	DirMixed    Directionality = "mixed"
)

// IsValidDirectionality returns true if d is a supported directionality.
func IsValidDirectionality(d Directionality) bool {
	switch d {
	case DirPositive, DirNegative, DirNeutral, DirMixed:
		return true
	default:
		return false
	}
}

// InteractionType classifies how two pressures relate.
type InteractionType string

const (
	InteractionAmplification InteractionType = "amplification"
	InteractionDampening     InteractionType = "dampening"
	InteractionReinforcement InteractionType = "reinforcement"
	InteractionCounteraction InteractionType = "counteraction"
	InteractionResonance     InteractionType = "resonance"
)

// RiskLevel is the dominant classification of a RiskState.
// RiskTransitioning is reserved; current estimator rules never emit it.
type RiskLevel string

const (
	RiskStable        RiskLevel = "stable"
	RiskElevated      RiskLevel = "elevated"
	RiskUnstable      RiskLevel = "unstable"
	RiskCritical      RiskLevel = "critical"
	RiskTransitioning RiskLevel = "transitioning"
)

// BehaviorType enumerates the trading behaviors a gate can allow or forbid.
type BehaviorType string

const (
	BehaviorTrendFollowing      BehaviorType = "trend_following"
	BehaviorMeanReversion       BehaviorType = "mean_reversion"
	BehaviorVolatilityExpansion BehaviorType = "volatility_expansion"
	BehaviorConvexStructures    BehaviorType = "convex_structures"
	BehaviorLiquidityProviding  BehaviorType = "liquidity_providing"
	BehaviorCarry               BehaviorType = "carry"
	BehaviorHedgingOnly         BehaviorType = "hedging_only"
	BehaviorReduceExposure      BehaviorType = "reduce_exposure"
)
