package authz

// Capability names checked by handlers. They are opaque to the engine.
const (
	RoleManage           = "ROLE_MANAGE"
	RoleView             = "ROLE_VIEW"
	UserManage           = "USER_MANAGE"
	UserView             = "USER_VIEW"
	PermissionManage     = "PERMISSION_MANAGE"
	PermissionView       = "PERMISSION_VIEW"
	RolePermissionAssign = "ROLE_PERMISSION_ASSIGN"
	BookManage           = "BOOK_MANAGE"
	CategoryManage       = "CATEGORY_MANAGE"
	LanguageManage       = "LANGUAGE_MANAGE"
	CopyManage           = "COPY_MANAGE"
	CopyView             = "COPY_VIEW"
	LocationManage       = "LOCATION_MANAGE"
	BookIssue            = "BOOK_ISSUE"
	IssueView            = "ISSUE_VIEW"
	RequestCreate        = "REQUEST_CREATE"
	RequestView          = "REQUEST_VIEW"
	RequestApprove       = "REQUEST_APPROVE"
	LogView              = "LOG_VIEW"
	FileUpload           = "FILE_UPLOAD"
	DigitalAccessView    = "DIGITAL_ACCESS_VIEW"
	BookPermissionManage = "BOOK_PERMISSION_MANAGE"
	BookPermissionView   = "BOOK_PERMISSION_VIEW"
)

// Vocabulary lists every capability with a short description, in seeding order.
var Vocabulary = []struct {
	Name        string
	Description string
}{
	{RoleManage, "Create and modify roles"},
	{RoleView, "View roles"},
	{UserManage, "Create users and change their status or role"},
	{UserView, "View users"},
	{PermissionManage, "Create permissions"},
	{PermissionView, "View permissions"},
	{RolePermissionAssign, "Assign permissions to roles"},
	{BookManage, "Create, update and delete books"},
	{CategoryManage, "Manage categories"},
	{LanguageManage, "Manage languages"},
	{CopyManage, "Manage book copies"},
	{CopyView, "View book copies"},
	{LocationManage, "Manage shelf locations"},
	{BookIssue, "Issue books to members"},
	{IssueView, "View issued books"},
	{RequestCreate, "Create book requests"},
	{RequestView, "View book requests"},
	{RequestApprove, "Approve book requests"},
	{LogView, "View the audit log"},
	{FileUpload, "Upload files"},
	{DigitalAccessView, "View digital access history"},
	{BookPermissionManage, "Grant and revoke restricted book access"},
	{BookPermissionView, "View restricted book access grants"},
}
