// internal/app/system/payments/payments.go
package payments

import "context"

// Intent is the opaque client-confirmation handle the processor returns. The
// core only hands the secret back to the caller; it never inspects it.
type Intent struct {
	ID           string
	ClientSecret string
}

// Processor captures payments for role upgrades. Amount is in whole currency
// units; implementations convert to the processor's smallest unit.
type Processor interface {
	CreateIntent(ctx context.Context, amount int64) (Intent, error)
}
