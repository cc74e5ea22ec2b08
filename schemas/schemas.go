package schemas

// Module names published by the logistics program.
const (
	ModuleUserManagement    string = "user_management"
	ModuleCourierManagement string = "courier_management"
	ModuleCore              string = "core"
	ModuleStatistics        string = "statistics"
)

// Entry and view functions. These must match the on-ledger program byte for byte.
const (
	RegisterUser      string = "register_user"
	GetUserInfoView   string = "get_user_info_view_v2"
	UpdateUserInfo    string = "update_user_info"
	DeactivateUser    string = "deactivate_user"
	ReactivateUser    string = "reactivate_user"
	RegisterCourier   string = "register_courier"
	UpdateCourierInfo string = "update_courier_info"
	DeactivateCourier string = "deactivate_courier"
	CreateOrder       string = "create_order"
	ConfirmOrder      string = "confirm_order_v2"
	GetUserOrders     string = "get_user_orders"
	Initialize        string = "initialize"
	GetPlatformStats  string = "get_platform_stats"
)
