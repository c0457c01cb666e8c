package transcoding

// Scale multiplies every sample by gain in place, clamping to the
// signed 16-bit range. Gains at or below unity can never clip.
func Scale(samples []int16, gain float64) {
	if gain == 1.0 {
		return
	}
	for i, s := range samples {
		samples[i] = clampSample(float64(s) * gain)
	}
}

func clampSample(v float64) int16 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return int16(v)
}
