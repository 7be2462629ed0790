package oracle

import (
	"testing"

	"github.com/bryanwahyu/checkdeck/internal/application"
	"github.com/bryanwahyu/checkdeck/internal/config"
	domain "github.com/bryanwahyu/checkdeck/internal/domain/checks"
	aiopenai "github.com/bryanwahyu/checkdeck/internal/infra/ai/openai"
	"github.com/bryanwahyu/checkdeck/internal/infra/oracle/simulated"
)

func TestFromConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	o, err := FromConfig(cfg, application.SystemClock{}, domain.DefaultCatalog())
	if err != nil {
		t.Fatalf("simulated: %v", err)
	}
	if _, ok := o.(*simulated.Oracle); !ok {
		t.Fatalf("expected simulated oracle, got %T", o)
	}

	cfg.Oracle.Kind = config.OracleOpenAI
	cfg.Oracle.OpenAI.APIKey = "sk-test"
	o, err = FromConfig(cfg, application.SystemClock{}, domain.DefaultCatalog())
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if _, ok := o.(*aiopenai.Oracle); !ok {
		t.Fatalf("expected openai oracle, got %T", o)
	}

	cfg.Oracle.Kind = "magic"
	if _, err := FromConfig(cfg, application.SystemClock{}, nil); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
