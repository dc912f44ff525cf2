package banks

import (
	"context"

	"github.com/FredAbod/Project-Eureka-sub000/internal/domain"
	"github.com/FredAbod/Project-Eureka-sub000/pkg/monoclient"
)

// MonoDirectory adapts the aggregator's bank list endpoint to the registry's
// DirectoryProvider.
type MonoDirectory struct {
	client *monoclient.Client
}

func NewMonoDirectory(client *monoclient.Client) *MonoDirectory {
	return &MonoDirectory{client: client}
}

// BankDirectory fetches the provider's extended bank directory.
func (d *MonoDirectory) BankDirectory(ctx context.Context) ([]domain.Bank, error) {
	resp, err := d.client.ListBanks(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Bank, 0, len(resp.Data))
	for _, b := range resp.Data {
		if b.Name == "" || b.NIPCode == "" {
			continue
		}
		out = append(out, domain.Bank{Name: b.Name, Code: b.NIPCode})
	}
	return out, nil
}
