// Package fingerprint вычисляет отпечаток анонимного клиента для учёта
// лимитов: md5 от пары (IP, User-Agent). Здесь же — извлечение клиентского
// IP из запроса с учётом X-Forwarded-For.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"net"
	"net/http"
	"strings"
)

// Make возвращает hex-представление md5(ip + " " + userAgent).
// Ключ используется как имя счетчика в кеше.
func Make(ip, userAgent string) string {
	sum := md5.Sum([]byte(ip + " " + userAgent))
	return hex.EncodeToString(sum[:])
}

// ClientIP возвращает клиентский IP запроса: первый валидный адрес
// из X-Forwarded-For, иначе хост из RemoteAddr. Пустая строка означает,
// что адрес определить не удалось.
func ClientIP(r *http.Request) string {
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		for _, part := range strings.Split(xf, ",") {
			ip := strings.TrimSpace(part)
			if ip == "" {
				continue
			}
			if net.ParseIP(ip) != nil {
				return ip
			}
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil {
		if net.ParseIP(host) != nil {
			return host
		}
		return ""
	}
	if net.ParseIP(r.RemoteAddr) != nil {
		return r.RemoteAddr
	}
	return ""
}
