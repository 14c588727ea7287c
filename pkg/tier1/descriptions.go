package tier1

import "fmt"

func zScoreDescription(z, popMean, popStd float64) string {
	return fmt.Sprintf("request count z-score %.2f (population mean %.1f, std %.1f)", z, popMean, popStd)
}

func intervalDescription(avgInterval, jitter float64) string {
	return fmt.Sprintf("interval avg %.1fs within bound, jitter %.1fs", avgInterval, jitter)
}

func iqrDescription(q1, q3, iqr float64) string {
	return fmt.Sprintf("interval IQR %.1fs (Q1 %.1fs, Q3 %.1fs)", iqr, q1, q3)
}
