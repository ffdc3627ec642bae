package constants

// 订单状态常量
const (
	OrderStatusPaid = "paid"
)

// 用户角色常量
const (
	UserRoleCustomer = "customer"
	UserRoleAdmin    = "admin"
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskReservationRelease = "reservation:release"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "hc"
)

// 库存预留默认配置常量
const (
	ReservationTTLMinutesDefault           = 15
	ReservationSweepIntervalSecondsDefault = 60
)
