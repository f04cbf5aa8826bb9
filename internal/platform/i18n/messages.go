package i18n

import (
	"strconv"
	"strings"
)

// Message codes shared by the schema, the form controller and the handlers.
const (
	MsgRequired            = "required"
	MsgEmail               = "email"
	MsgDate                = "date"
	MsgEnum                = "enum"
	MsgText                = "text"
	MsgDuplicateParent     = "duplicate_parent"
	MsgDuplicateNationalID = "duplicate_national_id"
	MsgInvalidData         = "invalid_data"
	MsgEmployeeCreated     = "employee_created"
	MsgEmployeeUpdated     = "employee_updated"
	MsgEmployeeDeleted     = "employee_deleted"
	MsgEmployeeNotFound    = "employee_not_found"
	MsgCreateFailed        = "create_failed"
	MsgUpdateFailed        = "update_failed"
	MsgDeleteFailed        = "delete_failed"
	MsgFetchFailed         = "fetch_failed"
	MsgInvalidCredentials  = "invalid_credentials"
	MsgUnauthorized        = "unauthorized"
	MsgForbidden           = "forbidden"
	MsgInternal            = "internal"
	MsgRateLimited         = "rate_limited"
	MsgMalformedBody       = "malformed_body"
	MsgPayloadTooLarge     = "payload_too_large"
	MsgIdempotencyConflict = "idempotency_conflict"
	MsgIdempotencyInFlight = "idempotency_in_flight"
	MsgMFARequired         = "mfa_required"
	MsgMFAInvalid          = "mfa_invalid"
	MsgMFAUnavailable      = "mfa_unavailable"
	MsgRecordTitle         = "record_title"
	MsgRecordRelatives     = "record_relatives"
	MsgRecordDeclaration   = "record_declaration"
	MsgRecordSignature     = "record_signature"
	MsgRecordPrinted       = "record_printed"
)

var messages = map[string]map[string]string{
	Arabic: {
		MsgRequired:            "{0} مطلوب",
		MsgEmail:               "البريد الإلكتروني غير صحيح",
		MsgDate:                "{0} يجب أن يكون تاريخاً صحيحاً بصيغة YYYY-MM-DD",
		MsgEnum:                "قيمة {0} غير معروفة",
		MsgText:                "{0} يحتوي على أحرف غير صالحة",
		MsgDuplicateParent:     "لا يمكن تسجيل أكثر من {0} واحد",
		MsgDuplicateNationalID: "رقم الهوية الوطنية مسجل مسبقاً",
		MsgInvalidData:         "بيانات غير صحيحة",
		MsgEmployeeCreated:     "تم إنشاء الموظف بنجاح",
		MsgEmployeeUpdated:     "تم تحديث بيانات الموظف بنجاح",
		MsgEmployeeDeleted:     "تم حذف الموظف بنجاح",
		MsgEmployeeNotFound:    "الموظف غير موجود",
		MsgCreateFailed:        "حدث خطأ أثناء إنشاء الموظف",
		MsgUpdateFailed:        "حدث خطأ أثناء تحديث الموظف",
		MsgDeleteFailed:        "حدث خطأ أثناء حذف الموظف",
		MsgFetchFailed:         "حدث خطأ أثناء جلب البيانات",
		MsgInvalidCredentials:  "اسم المستخدم أو كلمة المرور غير صحيحة",
		MsgUnauthorized:        "يجب تسجيل الدخول أولاً",
		MsgForbidden:           "ليس لديك صلاحية لهذا الإجراء",
		MsgInternal:            "حدث خطأ ما",
		MsgRateLimited:         "عدد كبير من الطلبات، حاول لاحقاً",
		MsgMalformedBody:       "تعذر قراءة الطلب",
		MsgPayloadTooLarge:     "حجم الطلب أكبر من المسموح",
		MsgIdempotencyConflict: "مفتاح التكرار مستخدم لطلب مختلف",
		MsgIdempotencyInFlight: "طلب بنفس مفتاح التكرار قيد التنفيذ",
		MsgMFARequired:         "رمز التحقق الثنائي مطلوب",
		MsgMFAInvalid:          "رمز التحقق الثنائي غير صحيح",
		MsgMFAUnavailable:      "التحقق الثنائي غير متاح",
		MsgRecordTitle:         "استمارة البيانات الشخصية",
		MsgRecordRelatives:     "بيانات الأقارب",
		MsgRecordDeclaration:   "أقر أنا الموقع أدناه بأن جميع البيانات صحيحة و تحت مسئوليتي",
		MsgRecordSignature:     "التوقيع",
		MsgRecordPrinted:       "تاريخ الطباعة: {0}",
	},
	English: {
		MsgRequired:            "{0} is required",
		MsgEmail:               "{0} must be a valid email address",
		MsgDate:                "{0} must be a valid date in YYYY-MM-DD format",
		MsgEnum:                "{0} must be one of: {1}",
		MsgText:                "{0} contains invalid characters",
		MsgDuplicateParent:     "only one {0} may be recorded",
		MsgDuplicateNationalID: "national ID is already registered",
		MsgInvalidData:         "Invalid data",
		MsgEmployeeCreated:     "Employee created successfully",
		MsgEmployeeUpdated:     "Employee updated successfully",
		MsgEmployeeDeleted:     "Employee deleted successfully",
		MsgEmployeeNotFound:    "Employee not found",
		MsgCreateFailed:        "Something went wrong while creating the employee",
		MsgUpdateFailed:        "Something went wrong while updating the employee",
		MsgDeleteFailed:        "Something went wrong while deleting the employee",
		MsgFetchFailed:         "Something went wrong while loading the data",
		MsgInvalidCredentials:  "Invalid username or password",
		MsgUnauthorized:        "Please sign in first",
		MsgForbidden:           "You do not have permission for this action",
		MsgInternal:            "Something went wrong",
		MsgRateLimited:         "Too many requests, try again later",
		MsgMalformedBody:       "The request body could not be read",
		MsgPayloadTooLarge:     "The request body is too large",
		MsgIdempotencyConflict: "Idempotency key was used for a different request",
		MsgIdempotencyInFlight: "A request with this idempotency key is still in progress",
		MsgMFARequired:         "A two-factor code is required",
		MsgMFAInvalid:          "The two-factor code is invalid",
		MsgMFAUnavailable:      "Two-factor authentication is not available",
		MsgRecordTitle:         "Personal Information Form",
		MsgRecordRelatives:     "Relatives",
		MsgRecordDeclaration:   "I declare that all the information provided above is true and under my responsibility.",
		MsgRecordSignature:     "Signature",
		MsgRecordPrinted:       "Printed on {0}",
	},
}

// Template returns the raw {0}-style template for code.
func Template(lang, code string) string {
	if table, ok := messages[lang]; ok {
		if msg, ok := table[code]; ok {
			return msg
		}
	}
	if msg, ok := messages[Arabic][code]; ok {
		return msg
	}
	return code
}

// T renders code in lang, substituting {0}, {1}, ... with args.
func T(lang, code string, args ...string) string {
	msg := Template(lang, code)
	for i, arg := range args {
		msg = strings.ReplaceAll(msg, "{"+strconv.Itoa(i)+"}", arg)
	}
	return msg
}

var fields = map[string][2]string{
	"name":              {"الاسم", "Full name"},
	"nickName":          {"اسم الشهرة", "Nickname"},
	"profession":        {"المهنة", "Profession"},
	"birthDate":         {"تاريخ الميلاد", "Birth date"},
	"nationalId":        {"رقم الهوية الوطنية", "National ID"},
	"maritalStatus":     {"الحالة الاجتماعية", "Marital status"},
	"residenceLocation": {"العنوان التفصيلي", "Residence address"},
	"hiringDate":        {"تاريخ التعيين", "Hiring date"},
	"hiringType":        {"نوع التعيين", "Hiring type"},
	"email":             {"البريد الإلكتروني", "Email"},
	"administration":    {"الإدارة", "Administration"},
	"actualWork":        {"العمل الفعلي", "Actual work"},
	"phoneNumber":       {"رقم الهاتف", "Phone number"},
	"notes":             {"ملاحظات", "Notes"},
	"relationshipType":  {"نوع العلاقة", "Relationship type"},
	"birthPlace":        {"مكان الميلاد", "Birth place"},
	"spouseName":        {"اسم الزوج/الزوجة", "Spouse name"},
	"relationships":     {"الأقارب", "Relationships"},
}

var relationshipFields = map[string][2]string{
	"residenceLocation": {"محل الإقامة", "Residence location"},
	"nationalId":        {"رقم الهوية", "National ID"},
}

// FieldLabel names a form field in lang. Relationship rows use their own
// wording for a few shared field names.
func FieldLabel(field, lang string, relationship bool) string {
	pair, ok := fields[field]
	if relationship {
		if rel, found := relationshipFields[field]; found {
			pair, ok = rel, true
		}
	}
	if !ok {
		return field
	}
	if lang == English {
		return pair[1]
	}
	return pair[0]
}
