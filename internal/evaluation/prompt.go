package evaluation

import (
	"fmt"

	"github.com/taqyim-dev/taqyim-api/internal/models"
)

const teacherHonorific = "معلم/ة"

// genderNoun returns the gender-correct student noun used in the prompt.
func genderNoun(g models.Gender) string {
	if g == models.GenderMale {
		return "الطالب"
	}
	return "الطالبة"
}

// buildPrompt composes the fixed parent-message prompt. The template is
// deliberately rigid: the model is asked for the final message text only.
func buildPrompt(student models.Student, subjectName string, level models.Evaluation, teacherName string) string {
	noun := genderNoun(student.Gender)
	return fmt.Sprintf(`أنت معلم خبير في كتابة تقارير الطلاب باللغة العربية. اكتب رسالة لولي أمر %s "%s" لإبلاغه/لإبلاغها بتقييمه/بتقييمها في مادة "%s".
التقييم هو: "%s".
اجعل الرسالة إيجابية ومشجعة، ومناسبة لطلاب المرحلة الابتدائية.
ابدأ الرسالة بـ "السلام عليكم ورحمة الله وبركاته، ولي أمر %s: %s"
واختمها بـ "%s المادة: %s".
لا تضف أي ملاحظات أو مقدمات إضافية، فقط نص الرسالة النهائي.`,
		noun, student.Name, subjectName, level, noun, student.Name, teacherHonorific, teacherName)
}
