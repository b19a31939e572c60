package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/letsssgooo/quizAdmin/internal/domain/models"
)

// HTTPClient реализует Client через HTTP API квизов.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

var _ Client = (*HTTPClient)(nil)

// NewHTTPClient создаёт клиента для сервера по адресу baseURL,
// например http://localhost:4000/api.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeoutRequest},
	}
}

// Health проверяет доступность сервера и хранилища.
func (c *HTTPClient) Health(ctx context.Context) error {
	return c.doRequest(ctx, http.MethodGet, "/health", nil, nil)
}

// ListQuizzes возвращает все квизы с подставленными вопросами.
func (c *HTTPClient) ListQuizzes(ctx context.Context) ([]models.PopulatedQuiz, error) {
	var quizzes []models.PopulatedQuiz
	if err := c.doRequest(ctx, http.MethodGet, "/quizzes/getAllQuiz", nil, &quizzes); err != nil {
		return nil, err
	}
	return quizzes, nil
}

// GetQuiz возвращает квиз quizID с подставленными вопросами.
func (c *HTTPClient) GetQuiz(ctx context.Context, quizID string) (*models.PopulatedQuiz, error) {
	var q models.PopulatedQuiz
	if err := c.doRequest(ctx, http.MethodGet, "/quizzes/"+url.PathEscape(quizID), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// GetQuizWithKeyword возвращает квиз quizID только с вопросами по keyword.
func (c *HTTPClient) GetQuizWithKeyword(ctx context.Context, quizID, keyword string) (*models.PopulatedQuiz, error) {
	path := "/quizzes/" + url.PathEscape(quizID) + "/populate"
	if keyword != "" {
		path += "?" + url.Values{"keyword": {keyword}}.Encode()
	}

	var q models.PopulatedQuiz
	if err := c.doRequest(ctx, http.MethodGet, path, nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuiz создаёт квиз.
func (c *HTTPClient) CreateQuiz(ctx context.Context, in models.QuizInput) (*models.Quiz, error) {
	var q models.Quiz
	if err := c.doRequest(ctx, http.MethodPost, "/quizzes/create", in, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuiz заменяет название и описание квиза quizID.
func (c *HTTPClient) UpdateQuiz(ctx context.Context, quizID string, in models.QuizInput) (*models.Quiz, error) {
	var q models.Quiz
	if err := c.doRequest(ctx, http.MethodPut, "/quizzes/update/"+url.PathEscape(quizID), in, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQuiz удаляет квиз quizID.
func (c *HTTPClient) DeleteQuiz(ctx context.Context, quizID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/quizzes/delete/"+url.PathEscape(quizID), nil, nil)
}

// AddQuestionToQuiz добавляет существующий вопрос questionID в квиз quizID.
func (c *HTTPClient) AddQuestionToQuiz(ctx context.Context, quizID, questionID string) (*QuizMessage, error) {
	params := map[string]interface{}{
		"questionId": questionID,
	}

	var res QuizMessage
	if err := c.doRequest(ctx, http.MethodPost, "/quizzes/"+url.PathEscape(quizID)+"/question", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// AddManyQuestionsToQuiz добавляет в квиз quizID существующие вопросы.
// Уже добавленные пропускаются, AddedCount в ответе считает только новые.
func (c *HTTPClient) AddManyQuestionsToQuiz(ctx context.Context, quizID string, questionIDs []string) (*AddManyResult, error) {
	params := map[string]interface{}{
		"questionIds": questionIDs,
	}

	var res AddManyResult
	if err := c.doRequest(ctx, http.MethodPost, "/quizzes/"+url.PathEscape(quizID)+"/questions", params, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RemoveQuestionFromQuiz убирает вопрос questionID из квиза quizID.
func (c *HTTPClient) RemoveQuestionFromQuiz(ctx context.Context, quizID, questionID string) (*QuizMessage, error) {
	path := "/quizzes/" + url.PathEscape(quizID) + "/question/" + url.PathEscape(questionID)

	var res QuizMessage
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListQuestions возвращает все вопросы.
func (c *HTTPClient) ListQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	if err := c.doRequest(ctx, http.MethodGet, "/question/getAllQuestion", nil, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// GetQuestion возвращает вопрос questionID.
func (c *HTTPClient) GetQuestion(ctx context.Context, questionID string) (*models.Question, error) {
	var q models.Question
	if err := c.doRequest(ctx, http.MethodGet, "/question/"+url.PathEscape(questionID), nil, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// CreateQuestion создаёт вопрос.
func (c *HTTPClient) CreateQuestion(ctx context.Context, in models.QuestionInput) (*models.Question, error) {
	var q models.Question
	if err := c.doRequest(ctx, http.MethodPost, "/question/create", in, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// UpdateQuestion заменяет поля вопроса questionID.
func (c *HTTPClient) UpdateQuestion(ctx context.Context, questionID string, in models.QuestionInput) (*models.Question, error) {
	var q models.Question
	if err := c.doRequest(ctx, http.MethodPut, "/question/"+url.PathEscape(questionID), in, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// DeleteQuestion удаляет вопрос questionID.
func (c *HTTPClient) DeleteQuestion(ctx context.Context, questionID string) error {
	return c.doRequest(ctx, http.MethodDelete, "/question/"+url.PathEscape(questionID), nil, nil)
}

// doRequest выполняет запрос к API и декодирует ответ в out, если out != nil.
// Ответ с кодом не 2xx возвращается как *APIError.
func (c *HTTPClient) doRequest(
	ctx context.Context,
	method string,
	path string,
	params interface{},
	out interface{},
) error {
	var body io.Reader
	if params != nil {
		data, err := json.Marshal(params)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to do %s request for %s: %w", method, path, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body for %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var result struct {
			Message string `json:"message"`
		}
		if err = json.Unmarshal(data, &result); err != nil || result.Message == "" {
			result.Message = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: result.Message}
	}

	if out == nil {
		return nil
	}

	if err = json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}

	return nil
}
