package application

import "time"

// Clock interface supaya timestamp laporan gampang dikontrol di test
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
