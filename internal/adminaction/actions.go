package adminaction

type ActionType string

const (
	ActionSetBookingStatus  ActionType = "SET_BOOKING_STATUS"
	ActionSetPaymentStatus  ActionType = "SET_PAYMENT_STATUS"
	ActionApproveReview     ActionType = "APPROVE_REVIEW"
	ActionRejectReview      ActionType = "REJECT_REVIEW"
	ActionDeleteReview      ActionType = "DELETE_REVIEW"
	ActionUpdateApplication ActionType = "UPDATE_APPLICATION"
	ActionCreateJobPosting  ActionType = "CREATE_JOB_POSTING"
	ActionUpdateJobPosting  ActionType = "UPDATE_JOB_POSTING"
	ActionToggleJobPosting  ActionType = "TOGGLE_JOB_POSTING"
	ActionCreatePackage     ActionType = "CREATE_PACKAGE"
	ActionUpdatePackage     ActionType = "UPDATE_PACKAGE"
	ActionUpdateSetting     ActionType = "UPDATE_SETTING"
	ActionCreateEmployee    ActionType = "CREATE_EMPLOYEE"
	ActionChangeRole        ActionType = "CHANGE_ROLE"
	ActionExportBookings    ActionType = "EXPORT_BOOKINGS"
)
