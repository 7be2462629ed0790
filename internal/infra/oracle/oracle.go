// Package oracle picks the verdict source named in config.
package oracle

import (
	"fmt"

	"github.com/bryanwahyu/checkdeck/internal/application"
	"github.com/bryanwahyu/checkdeck/internal/config"
	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
	aiopenai "github.com/bryanwahyu/checkdeck/internal/infra/ai/openai"
	"github.com/bryanwahyu/checkdeck/internal/infra/oracle/simulated"
)

func FromConfig(cfg *config.Config, clock application.Clock, defs []domain.CheckDefinition) (domain.Oracle, error) {
	switch cfg.Oracle.Kind {
	case config.OracleSimulated:
		return simulated.New(clock, cfg.Oracle.Delay, cfg.Oracle.Seed), nil
	case config.OracleOpenAI:
		return aiopenai.NewOracle(cfg.Oracle.OpenAI.APIKey, cfg.Oracle.OpenAI.Model, defs), nil
	}
	return nil, fmt.Errorf("unknown oracle kind %q", cfg.Oracle.Kind)
}
