package sizing

// RoundToLot floors shares to a multiple of lotSize. A lotSize <= 0 is treated as 1.
func RoundToLot(shares, lotSize int64) int64 {
	if lotSize <= 0 {
		lotSize = 1
	}
	q := shares / lotSize
	if shares%lotSize != 0 && shares < 0 {
		q--
	}
	return q * lotSize
}
