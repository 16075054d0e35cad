// Package quotesfile loads the LLM-produced quote batch from a JSON file:
// an array of {"timestamp": "[MM:SS-MM:SS]", "text": ...} objects. Nothing
// here is validated beyond JSON shape; quotes are untrusted by contract and
// the matcher handles bad ones.
package quotesfile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/forPelevin/reanchor/internal/types"
)

type Adapter struct{}

func New() *Adapter { return &Adapter{} }

func (a *Adapter) Load(ctx context.Context, path string) ([]types.Quote, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}
	var quotes []types.Quote
	if err := json.Unmarshal(b, &quotes); err != nil {
		return nil, fmt.Errorf("parse quotes %s: %w", path, err)
	}
	return quotes, nil
}
