package catalog

import (
	"github.com/google/uuid"
	"github.com/spigell/candidate-assessor/internal/domain"
)

var seedNamespace = uuid.MustParse("6f1c7d52-3b8e-4c1a-9d6e-2f0a5b7c9e14")

// SeedID derives a stable question id from its category and text.
func SeedID(category, text string) string {
	return uuid.NewSHA1(seedNamespace, []byte(category+"\n"+text)).String()
}

func seeded(q domain.Question) domain.Question {
	q.ID = SeedID(q.Category, q.Text)
	return q
}

// DefaultQuestions returns the built-in question set.
func DefaultQuestions() []domain.Question {
	return []domain.Question{
		seeded(domain.Question{
			Text:           "Explain the difference between supervised, unsupervised, and reinforcement learning. Provide real-world examples for each.",
			Type:           domain.Conceptual,
			Difficulty:     domain.Beginner,
			Category:       "data_science_fundamentals",
			Topics:         []string{"machine_learning_types", "fundamentals"},
			ExpectedAnswer: "Supervised learning trains on labeled data for classification or regression, unsupervised learning finds structure such as clusters in unlabeled data, reinforcement learning learns a policy from rewards, for example game playing.",
			TimeLimit:      10,
			Points:         10,
		}),
		seeded(domain.Question{
			Text:         "Write a Python function to calculate the mean, median, and mode of a list of numbers without using built-in statistical functions.",
			Type:         domain.Coding,
			Difficulty:   domain.Intermediate,
			Category:     "data_science_fundamentals",
			Topics:       []string{"statistics", "python_programming"},
			CodeTemplate: "def calculate_statistics(numbers):\n    # Your code here\n    pass",
			TimeLimit:    20,
			Points:       15,
		}),
		seeded(domain.Question{
			Text:           "Which summary statistics describe the central tendency of a distribution? List them separated by commas.",
			Type:           domain.MultipleChoice,
			Difficulty:     domain.Beginner,
			Category:       "data_science_fundamentals",
			Topics:         []string{"statistics", "fundamentals"},
			ExpectedAnswer: "mean,median,mode",
			TimeLimit:      3,
			Points:         5,
		}),
		seeded(domain.Question{
			Text:           "Explain the Central Limit Theorem and its importance in statistical inference. How does it relate to hypothesis testing?",
			Type:           domain.Conceptual,
			Difficulty:     domain.Intermediate,
			Category:       "statistics_probability",
			Topics:         []string{"central_limit_theorem", "hypothesis_testing"},
			ExpectedAnswer: "The central limit theorem states that the sampling distribution of the mean approaches a normal distribution as sample size grows, which enables parametric hypothesis tests and confidence intervals.",
			TimeLimit:      15,
			Points:         12,
		}),
		seeded(domain.Question{
			Text:           "A/B test results: Version A has 150 conversions out of 1000 users, Version B has 180 conversions out of 1000 users. Is Version B significantly better? Use appropriate statistical test.",
			Type:           domain.Practical,
			Difficulty:     domain.Intermediate,
			Category:       "statistics_probability",
			Topics:         []string{"ab_testing", "statistical_significance"},
			ExpectedAnswer: "Perform a chi-square test or a two proportion z-test and interpret the p-value against the significance level.",
			TimeLimit:      20,
			Points:         15,
		}),
		seeded(domain.Question{
			Text:           "Describe the bias-variance tradeoff in machine learning. How does it relate to model complexity and overfitting?",
			Type:           domain.Conceptual,
			Difficulty:     domain.Intermediate,
			Category:       "machine_learning",
			Topics:         []string{"bias_variance", "model_complexity"},
			ExpectedAnswer: "Simple models have high bias and underfit, complex models have high variance and overfit, and regularization or more data balance the tradeoff between bias and variance.",
			TimeLimit:      12,
			Points:         10,
		}),
		seeded(domain.Question{
			Text:         "Implement a simple decision tree classifier from scratch in Python. Include methods for fitting and prediction.",
			Type:         domain.Coding,
			Difficulty:   domain.Advanced,
			Category:     "machine_learning",
			Topics:       []string{"decision_trees", "algorithms"},
			CodeTemplate: "class SimpleDecisionTree:\n    def __init__(self, max_depth=3):\n        self.max_depth = max_depth\n\n    def fit(self, X, y):\n        # Your code here\n        pass\n\n    def predict(self, X):\n        # Your code here\n        pass",
			TimeLimit:    30,
			Points:       20,
		}),
		seeded(domain.Question{
			Text:           "Name the scikit-learn estimator methods used to train a model and to produce predictions.",
			Type:           domain.MultipleChoice,
			Difficulty:     domain.Beginner,
			Category:       "machine_learning",
			Topics:         []string{"scikit_learn", "api"},
			ExpectedAnswer: "fit,predict",
			TimeLimit:      3,
			Points:         5,
		}),
		seeded(domain.Question{
			Text:           "Explain the architecture of a Transformer model. How does attention mechanism work and why is it important?",
			Type:           domain.Conceptual,
			Difficulty:     domain.Advanced,
			Category:       "deep_learning",
			Topics:         []string{"transformers", "attention_mechanism"},
			ExpectedAnswer: "Transformers stack multi-head self attention and feed forward layers with positional encoding; attention weighs every token against every other token, allowing parallel training and long range context unlike RNNs.",
			TimeLimit:      15,
			Points:         15,
		}),
		seeded(domain.Question{
			Text:         "Implement a simple neural network with backpropagation from scratch using only NumPy. Include forward and backward pass.",
			Type:         domain.Coding,
			Difficulty:   domain.Expert,
			Category:     "deep_learning",
			Topics:       []string{"neural_networks", "backpropagation"},
			CodeTemplate: "import numpy as np\n\nclass NeuralNetwork:\n    def __init__(self, input_size, hidden_size, output_size):\n        pass\n\n    def forward(self, X):\n        pass\n\n    def backward(self, X, y, output):\n        pass",
			TimeLimit:    45,
			Points:       25,
		}),
		seeded(domain.Question{
			Text:           "Compare and contrast traditional NLP approaches (like TF-IDF, Bag of Words) with modern embedding-based approaches (like Word2Vec, BERT).",
			Type:           domain.Conceptual,
			Difficulty:     domain.Intermediate,
			Category:       "natural_language_processing",
			Topics:         []string{"feature_extraction", "embeddings"},
			ExpectedAnswer: "Sparse count based features ignore word order and semantics while dense embeddings capture semantic similarity and context, with contextual models like BERT outperforming on most tasks.",
			TimeLimit:      12,
			Points:         12,
		}),
		seeded(domain.Question{
			Text:         "Write a Python decorator that measures execution time of any function and logs the results.",
			Type:         domain.Coding,
			Difficulty:   domain.Intermediate,
			Category:     "python_programming",
			Topics:       []string{"decorators", "performance"},
			CodeTemplate: "import time\nimport functools\n\ndef timing_decorator(func):\n    @functools.wraps(func)\n    def wrapper(*args, **kwargs):\n        # Your code here\n        pass\n    return wrapper",
			TimeLimit:    15,
			Points:       12,
		}),
		seeded(domain.Question{
			Text:           "Which Python libraries are the standard choice for numerical arrays and tabular data manipulation? List them separated by commas.",
			Type:           domain.MultipleChoice,
			Difficulty:     domain.Beginner,
			Category:       "python_programming",
			Topics:         []string{"libraries", "data_manipulation"},
			ExpectedAnswer: "numpy,pandas",
			TimeLimit:      3,
			Points:         5,
		}),
		seeded(domain.Question{
			Text:           "Explain how Python generators differ from lists and when you would use them in a data pipeline.",
			Type:           domain.Conceptual,
			Difficulty:     domain.Advanced,
			Category:       "python_programming",
			Topics:         []string{"generators", "memory"},
			ExpectedAnswer: "Generators produce values lazily with yield, keeping memory constant for large or streaming data, while lists materialize every element in memory.",
			TimeLimit:      10,
			Points:         10,
		}),
		seeded(domain.Question{
			Text:           "Describe what a tool-using LLM agent is and how it decides which tool to call.",
			Type:           domain.Conceptual,
			Difficulty:     domain.Beginner,
			Category:       "agentic_ai_systems",
			Topics:         []string{"agents", "tool_usage"},
			ExpectedAnswer: "An agent wraps a language model in a loop that reads tool descriptions, chooses a tool from the model output, executes it and feeds the observation back until the task is done.",
			TimeLimit:      8,
			Points:         8,
		}),
		seeded(domain.Question{
			Text:           "Design an architecture for a multi-agent system that can collaboratively solve complex data analysis tasks. Describe the agent roles and communication protocols.",
			Type:           domain.Conceptual,
			Difficulty:     domain.Advanced,
			Category:       "agentic_ai_systems",
			Topics:         []string{"multi_agent_systems", "architecture_design"},
			ExpectedAnswer: "Specialized agents such as planner, data loader, analyst and reviewer coordinate through a shared message protocol or blackboard with an orchestrator handling task decomposition.",
			TimeLimit:      20,
			Points:         18,
		}),
		seeded(domain.Question{
			Text:         "Implement a simple agent that can use tools to answer questions about data. Include at least 3 tools: data loader, analyzer, and visualizer.",
			Type:         domain.Coding,
			Difficulty:   domain.Expert,
			Category:     "agentic_ai_systems",
			Topics:       []string{"agent_framework", "tool_usage"},
			CodeTemplate: "class DataAnalysisAgent:\n    def __init__(self):\n        self.tools = {\n            'load_data': self.load_data,\n            'analyze_data': self.analyze_data,\n            'visualize_data': self.visualize_data\n        }\n\n    def process_query(self, query):\n        # Your code here\n        pass",
			TimeLimit:    40,
			Points:       25,
		}),
		seeded(domain.Question{
			Text:           "List prompting techniques that add worked examples or intermediate reasoning steps to a prompt, separated by commas.",
			Type:           domain.MultipleChoice,
			Difficulty:     domain.Beginner,
			Category:       "prompt_engineering",
			Topics:         []string{"prompt_design"},
			ExpectedAnswer: "few-shot,chain of thought",
			TimeLimit:      3,
			Points:         5,
		}),
		seeded(domain.Question{
			Text:           "Explain the principles of effective prompt engineering for LLMs. Provide examples of good vs bad prompts for a specific task.",
			Type:           domain.Conceptual,
			Difficulty:     domain.Intermediate,
			Category:       "prompt_engineering",
			Topics:         []string{"prompt_design", "llm_interaction"},
			ExpectedAnswer: "Effective prompts give clear instructions, context, examples and output format, and are refined iteratively against evaluation cases.",
			TimeLimit:      12,
			Points:         10,
		}),
		seeded(domain.Question{
			Text:           "Design a prompt template system that can dynamically generate prompts for different types of data analysis tasks. Include examples.",
			Type:           domain.Practical,
			Difficulty:     domain.Advanced,
			Category:       "prompt_engineering",
			Topics:         []string{"prompt_templates", "dynamic_generation"},
			ExpectedAnswer: "Show a template structure with variable substitution, task specific sections and examples for each analysis type.",
			TimeLimit:      25,
			Points:         15,
		}),
		seeded(domain.Question{
			Text:           "How do Large Language Models handle context windows and what are the implications for long-document processing?",
			Type:           domain.Conceptual,
			Difficulty:     domain.Intermediate,
			Category:       "llm_fundamentals",
			Topics:         []string{"context_windows", "document_processing"},
			ExpectedAnswer: "Models attend over a bounded number of tokens, so long documents need chunking, sliding windows, summarization or retrieval to fit the context window.",
			TimeLimit:      10,
			Points:         10,
		}),
		seeded(domain.Question{
			Text:           "Describe different coordination mechanisms for multi-agent systems (centralized, decentralized, hierarchical). Compare their advantages and disadvantages.",
			Type:           domain.Conceptual,
			Difficulty:     domain.Advanced,
			Category:       "multi_agent_coordination",
			Topics:         []string{"coordination_patterns", "system_architecture"},
			ExpectedAnswer: "Centralized coordination is simple but a bottleneck, decentralized scales and tolerates faults with more communication overhead, hierarchical balances both.",
			TimeLimit:      15,
			Points:         15,
		}),
		seeded(domain.Question{
			Text:           "Design an automated ML pipeline that can handle data preprocessing, model training, evaluation, and deployment. Include error handling and monitoring.",
			Type:           domain.Practical,
			Difficulty:     domain.Expert,
			Category:       "ai_workflow_automation",
			Topics:         []string{"mlops", "automation"},
			ExpectedAnswer: "Describe pipeline stages, orchestration, validation gates, retries and monitoring of data drift and model quality.",
			TimeLimit:      30,
			Points:         20,
		}),
		seeded(domain.Question{
			Text:           "Discuss the ethical considerations in deploying AI systems for hiring. What safeguards should be implemented to ensure fairness?",
			Type:           domain.Conceptual,
			Difficulty:     domain.Intermediate,
			Category:       "ethics_ai_safety",
			Topics:         []string{"ai_ethics", "fairness"},
			ExpectedAnswer: "Discuss bias mitigation, audits, transparency, human oversight and accountability measures for automated hiring decisions.",
			TimeLimit:      15,
			Points:         12,
		}),
	}
}
