package model

// ProgramCode 确定性评分模型使用的四个固定学位课程代码。
// 声明顺序即平分时的裁决顺序，不能随意调整。
type ProgramCode string

const (
	ProgramBSCS ProgramCode = "BSCS" // 计算机科学
	ProgramBSIT ProgramCode = "BSIT" // 信息技术
	ProgramBSIS ProgramCode = "BSIS" // 信息系统
	ProgramEE   ProgramCode = "EE"   // 电气工程
)

// ProgramCodes 固定遍历顺序。百分比计算和胜者裁决都必须按这个顺序折叠，
// 直接遍历 map 会破坏平分结果的确定性。
var ProgramCodes = []ProgramCode{ProgramBSCS, ProgramBSIT, ProgramBSIS, ProgramEE}

func (p ProgramCode) Valid() bool {
	for _, c := range ProgramCodes {
		if p == c {
			return true
		}
	}
	return false
}

// CourseID AI评估流程使用的五个课程标识，与确定性模型的四代码体系是
// 两套独立的枚举，合并展示时必须经过显式映射，不允许直接混用键名。
type CourseID string

const (
	CourseBSCS CourseID = "BSCS"
	CourseBSIT CourseID = "BSIT"
	CourseBSIS CourseID = "BSIS"
	CourseBSEE CourseID = "BSEE"
	CourseACT  CourseID = "ACT" // 技术型专科，确定性模型中没有对应项
)

var CourseIDs = []CourseID{CourseBSCS, CourseBSIT, CourseBSIS, CourseBSEE, CourseACT}

func (c CourseID) Valid() bool {
	for _, id := range CourseIDs {
		if c == id {
			return true
		}
	}
	return false
}

// CourseForProgram 四代码体系到五标识体系的映射。EE 在 AI 体系里写作 BSEE。
func CourseForProgram(p ProgramCode) (CourseID, bool) {
	switch p {
	case ProgramBSCS:
		return CourseBSCS, true
	case ProgramBSIT:
		return CourseBSIT, true
	case ProgramBSIS:
		return CourseBSIS, true
	case ProgramEE:
		return CourseBSEE, true
	}
	return "", false
}

// ProgramForCourse 反向映射。ACT 没有确定性模型对应项，返回 false。
func ProgramForCourse(c CourseID) (ProgramCode, bool) {
	switch c {
	case CourseBSCS:
		return ProgramBSCS, true
	case CourseBSIT:
		return ProgramBSIT, true
	case CourseBSIS:
		return ProgramBSIS, true
	case CourseBSEE:
		return ProgramEE, true
	}
	return "", false
}

// CourseDescriptions AI提示词中嵌入的课程说明，顺序与 CourseIDs 一致。
var CourseDescriptions = map[CourseID]string{
	CourseBSCS: "BS Computer Science - 侧重算法、软件工程与计算理论，适合数学基础扎实、喜爱编程的学生",
	CourseBSIT: "BS Information Technology - 侧重系统运维、网络与应用部署，适合动手实践型学生",
	CourseBSIS: "BS Information Systems - 侧重业务流程与信息化管理，适合兼具技术与管理兴趣的学生",
	CourseBSEE: "BS Electrical Engineering - 侧重电路、电力系统与嵌入式硬件，适合物理与工程方向的学生",
	CourseACT:  "Associate in Computer Technology - 两年制技术专科，侧重实用计算机操作技能，适合希望快速就业的学生",
}
