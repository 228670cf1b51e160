package validation

import (
	"encoding/json"
	"net/mail"
	"strings"
)

// Violation mô tả một lỗi của một field trong request body
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const minPasswordLength = 7

// ParseBody giải mã JSON body thành map các field thô. Giữ raw message để
// kiểm tra kiểu của từng field (ví dụ completed phải là boolean thật).
func ParseBody(body []byte) (map[string]json.RawMessage, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

// String trả về giá trị string của một field đã được validate
func String(fields map[string]json.RawMessage, key string) (string, bool) {
	raw, ok := fields[key]
	if !ok {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// Bool trả về giá trị boolean của một field đã được validate
func Bool(fields map[string]json.RawMessage, key string) (bool, bool) {
	raw, ok := fields[key]
	if !ok {
		return false, false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err != nil {
		return false, false
	}
	return b, true
}

// UserCreate kiểm tra body đăng ký: name, email và password đều bắt buộc
func UserCreate(fields map[string]json.RawMessage) []Violation {
	violations := checkUnknown(fields, "name", "email", "password")

	for _, key := range []string{"name", "email", "password"} {
		if _, ok := fields[key]; !ok {
			violations = append(violations, Violation{key, "is required"})
		}
	}

	return append(violations, checkUserFields(fields)...)
}

// UserUpdate kiểm tra body cập nhật profile: chỉ chấp nhận name, email,
// password và không cho ghi đè bằng giá trị rỗng
func UserUpdate(fields map[string]json.RawMessage) []Violation {
	violations := checkUnknown(fields, "name", "email", "password")

	if len(fields) == 0 {
		violations = append(violations, Violation{"", "no fields to update"})
	}

	return append(violations, checkUserFields(fields)...)
}

// TaskCreate kiểm tra body tạo task: description bắt buộc, completed tùy chọn
func TaskCreate(fields map[string]json.RawMessage) []Violation {
	violations := checkUnknown(fields, "description", "completed")

	if _, ok := fields["description"]; !ok {
		violations = append(violations, Violation{"description", "is required"})
	}

	return append(violations, checkTaskFields(fields)...)
}

// TaskUpdate kiểm tra body cập nhật task: chỉ chấp nhận description và completed
func TaskUpdate(fields map[string]json.RawMessage) []Violation {
	violations := checkUnknown(fields, "description", "completed")

	if len(fields) == 0 {
		violations = append(violations, Violation{"", "no fields to update"})
	}

	return append(violations, checkTaskFields(fields)...)
}

// checkUnknown báo lỗi mọi field nằm ngoài danh sách cho phép
func checkUnknown(fields map[string]json.RawMessage, allowed ...string) []Violation {
	violations := []Violation{}
	for key := range fields {
		found := false
		for _, a := range allowed {
			if key == a {
				found = true
				break
			}
		}
		if !found {
			violations = append(violations, Violation{key, "unknown field"})
		}
	}
	return violations
}

func checkUserFields(fields map[string]json.RawMessage) []Violation {
	violations := []Violation{}

	if raw, ok := fields["name"]; ok {
		name, ok := asString(raw)
		if !ok {
			violations = append(violations, Violation{"name", "must be a string"})
		} else if strings.TrimSpace(name) == "" {
			violations = append(violations, Violation{"name", "must not be empty"})
		}
	}

	if raw, ok := fields["email"]; ok {
		email, ok := asString(raw)
		if !ok {
			violations = append(violations, Violation{"email", "must be a string"})
		} else if _, err := mail.ParseAddress(email); err != nil {
			violations = append(violations, Violation{"email", "is not a valid email address"})
		}
	}

	if raw, ok := fields["password"]; ok {
		password, ok := asString(raw)
		switch {
		case !ok:
			violations = append(violations, Violation{"password", "must be a string"})
		case len(password) < minPasswordLength:
			violations = append(violations, Violation{"password", "is too short"})
		case strings.Contains(strings.ToLower(password), "password"):
			violations = append(violations, Violation{"password", "must not contain 'password'"})
		}
	}

	return violations
}

func checkTaskFields(fields map[string]json.RawMessage) []Violation {
	violations := []Violation{}

	if raw, ok := fields["description"]; ok {
		description, ok := asString(raw)
		if !ok {
			violations = append(violations, Violation{"description", "must be a string"})
		} else if strings.TrimSpace(description) == "" {
			violations = append(violations, Violation{"description", "must not be empty"})
		}
	}

	if raw, ok := fields["completed"]; ok {
		var b bool
		if err := json.Unmarshal(raw, &b); err != nil {
			violations = append(violations, Violation{"completed", "must be a boolean"})
		}
	}

	return violations
}

func asString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
