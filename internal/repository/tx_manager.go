package repository

import "context"

// 行ロックを伴う更新（カート・注文・状態履歴）はこの中で行う
type TxRepos interface {
	Orders() OrderRepository
	Carts() CartRepository
	Products() ProductRepository
	AuditLogs() AuditLogRepository
}

type TransactionManager interface {
	// fnがerrorを返すとrollback
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}
