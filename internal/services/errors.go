package services

import "errors"

// Common service errors
var (
	ErrNotFound      = errors.New("không tìm thấy dữ liệu")
	ErrUnauthorized  = errors.New("sai tên đăng nhập hoặc mật khẩu")
	ErrInvalidState  = errors.New("phiên nhập dữ liệu không còn hiệu lực")
	ErrNotConfigured = errors.New("tính năng chưa được cấu hình")
	ErrForbiddenMode = errors.New("chế độ đăng nhập mở không được phép trong môi trường production")
)
