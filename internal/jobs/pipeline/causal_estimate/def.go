package causal_estimate

import (
	"github.com/yungbote/cqox-backend/internal/pkg/logger"
	"github.com/yungbote/cqox-backend/internal/services"
)

// Pipeline re-estimates one user's treatment effects and path model.
type Pipeline struct {
	log      *logger.Logger
	estimate services.EstimationService
}

func New(baseLog *logger.Logger, estimate services.EstimationService) *Pipeline {
	return &Pipeline{
		log:      baseLog.With("job", services.JobTypeCausalEstimate),
		estimate: estimate,
	}
}

func (p *Pipeline) Type() string { return services.JobTypeCausalEstimate }
