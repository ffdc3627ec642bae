package payment

import (
	"context"
	"errors"

	"github.com/holdcart/internal/models"
)

// Authorizer 支付授权能力。结算服务只依赖授权结果，
// 具体网关实现可替换。
type Authorizer interface {
	Authorize(ctx context.Context, userID uint, amount models.Money) error
}

// SandboxGateway 沙箱网关：金额合法即授权通过
type SandboxGateway struct{}

// NewSandboxGateway 创建沙箱网关
func NewSandboxGateway() *SandboxGateway {
	return &SandboxGateway{}
}

// Authorize 授权支付
func (g *SandboxGateway) Authorize(ctx context.Context, userID uint, amount models.Money) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if userID == 0 {
		return errors.New("missing payer")
	}
	if amount.IsNegative() {
		return errors.New("negative amount")
	}
	return nil
}
