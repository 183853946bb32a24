package service

import (
	"course_advisor_backend/internal/model"
	"math"
)

// uniformFallbackPercent 没有任何得分信号时每个课程的兜底百分比
const uniformFallbackPercent = 25

// ComputePercentages 把累计分数归一化为 0-100 的契合度百分比。
// 总分为 0 时四个课程统一记 25。各项独立四舍五入，加总可能不等于 100，
// 这是接受的偏差，不做二次归一。
func ComputePercentages(scores map[model.ProgramCode]float64) map[model.ProgramCode]float64 {
	total := 0.0
	for _, p := range model.ProgramCodes {
		total += scores[p]
	}

	percentages := make(map[model.ProgramCode]float64, len(model.ProgramCodes))
	for _, p := range model.ProgramCodes {
		if total > 0 {
			percentages[p] = math.Round(scores[p] / total * 100)
		} else {
			percentages[p] = uniformFallbackPercent
		}
	}
	return percentages
}

// PickRecommendedProgram 按 ProgramCodes 的固定顺序左折叠取严格最大值，
// 平分时先声明的课程胜出。结果必须是确定性的，不能依赖 map 遍历顺序。
func PickRecommendedProgram(percentages map[model.ProgramCode]float64) model.ProgramCode {
	winner := model.ProgramCodes[0]
	best := percentages[winner]
	for _, p := range model.ProgramCodes[1:] {
		if percentages[p] > best {
			winner = p
			best = percentages[p]
		}
	}
	return winner
}
